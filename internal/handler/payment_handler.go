package handler

import (
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in service.CreatePaymentInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	payment, err := h.service.Create(in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment recorded", "data": payment})
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	payments, total, err := h.service.GetPayments(p, queryUUID(c, "purchase_order_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(payments, total, p))
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}

	payment, err := h.service.GetPayment(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payment)
}

func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "orderId")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	report, err := h.service.Status(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}
