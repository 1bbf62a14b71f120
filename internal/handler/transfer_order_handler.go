package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransferOrderHandler struct {
	service service.TransferOrderService
}

func NewTransferOrderHandler(s service.TransferOrderService) *TransferOrderHandler {
	return &TransferOrderHandler{service: s}
}

func (h *TransferOrderHandler) Create(c *fiber.Ctx) error {
	var in service.CreateTransferOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Create(in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transfer order created", "data": order})
}

func (h *TransferOrderHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.TransferOrderFilters{
		Status:          c.Query("status"),
		FromWarehouseID: queryUUID(c, "from_warehouse_id"),
		ToWarehouseID:   queryUUID(c, "to_warehouse_id"),
		DateFrom:        queryDate(c, "date_from"),
		DateTo:          queryDate(c, "date_to"),
	}

	orders, total, err := h.service.GetOrders(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(orders, total, p))
}

func (h *TransferOrderHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	order, err := h.service.GetOrder(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

func (h *TransferOrderHandler) Submit(c *fiber.Ctx) error {
	return h.action(c, h.service.Submit, "Transfer order submitted")
}

func (h *TransferOrderHandler) Approve(c *fiber.Ctx) error {
	return h.action(c, h.service.Approve, "Transfer order approved")
}

func (h *TransferOrderHandler) Ship(c *fiber.Ctx) error {
	return h.action(c, h.service.Ship, "Transfer order shipped")
}

func (h *TransferOrderHandler) Reject(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Reject(id, body.Reason, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer order rejected", "data": order})
}

func (h *TransferOrderHandler) Receive(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var body struct {
		Items []service.TransferReceiptInput `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Receive(id, body.Items, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer order received", "data": order})
}

func (h *TransferOrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Cancel(id, body.Reason, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer order cancelled", "data": order})
}

func (h *TransferOrderHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.service.CountByStatus()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(counts)
}

func (h *TransferOrderHandler) action(c *fiber.Ctx, op func(id uuid.UUID, actor string) (*model.TransferOrder, error), msg string) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	order, err := op(id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "data": order})
}
