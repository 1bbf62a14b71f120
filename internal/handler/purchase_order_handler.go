package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
}

func NewPurchaseOrderHandler(s service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: s}
}

func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in service.CreatePurchaseOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Create(in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": order})
}

func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.PurchaseOrderFilters{
		Status:      c.Query("status"),
		Supplier:    c.Query("supplier"),
		WarehouseID: queryUUID(c, "warehouse_id"),
		DateFrom:    queryDate(c, "date_from"),
		DateTo:      queryDate(c, "date_to"),
	}

	orders, total, err := h.service.GetOrders(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(orders, total, p))
}

func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
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

func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var in service.CreatePurchaseOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Update(id, in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order updated", "data": order})
}

func (h *PurchaseOrderHandler) Submit(c *fiber.Ctx) error {
	return h.action(c, h.service.Submit, "Purchase order submitted")
}

func (h *PurchaseOrderHandler) Approve(c *fiber.Ctx) error {
	return h.action(c, h.service.Approve, "Purchase order approved")
}

func (h *PurchaseOrderHandler) PlaceOrder(c *fiber.Ctx) error {
	return h.action(c, h.service.PlaceOrder, "Purchase order placed")
}

func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var body struct {
		Items []service.ReceiveItemInput `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.Receive(id, body.Items, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Items received", "data": order})
}

func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
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
	return c.JSON(fiber.Map{"message": "Purchase order cancelled", "data": order})
}

func (h *PurchaseOrderHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.service.CountByStatus()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(counts)
}

func (h *PurchaseOrderHandler) action(c *fiber.Ctx, op func(id uuid.UUID, actor string) (*model.PurchaseOrder, error), msg string) error {
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
