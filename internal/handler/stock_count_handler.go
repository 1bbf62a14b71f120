package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockCountHandler struct {
	service service.StockCountService
}

func NewStockCountHandler(s service.StockCountService) *StockCountHandler {
	return &StockCountHandler{service: s}
}

func (h *StockCountHandler) Create(c *fiber.Ctx) error {
	var in service.CreateStockCountInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	count, err := h.service.Create(in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock count created", "data": count})
}

func (h *StockCountHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.StockCountFilters{
		Status:      c.Query("status"),
		WarehouseID: queryUUID(c, "warehouse_id"),
		DateFrom:    queryDate(c, "date_from"),
		DateTo:      queryDate(c, "date_to"),
	}

	counts, total, err := h.service.GetCounts(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(counts, total, p))
}

func (h *StockCountHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid count ID")
	}

	count, err := h.service.GetCount(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(count)
}

func (h *StockCountHandler) Start(c *fiber.Ctx) error {
	return h.action(c, h.service.Start, "Stock count started")
}

func (h *StockCountHandler) Complete(c *fiber.Ctx) error {
	return h.action(c, h.service.Complete, "Stock count completed")
}

func (h *StockCountHandler) Approve(c *fiber.Ctx) error {
	return h.action(c, h.service.Approve, "Stock count approved")
}

func (h *StockCountHandler) RecordCounts(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid count ID")
	}

	var body struct {
		Items []service.CountEntry `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	count, err := h.service.RecordCounts(id, body.Items, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Counts recorded", "data": count})
}

func (h *StockCountHandler) Cancel(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid count ID")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid JSON")
	}

	count, err := h.service.Cancel(id, body.Reason, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock count cancelled", "data": count})
}

func (h *StockCountHandler) Variance(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid count ID")
	}

	report, err := h.service.Variance(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

func (h *StockCountHandler) action(c *fiber.Ctx, op func(id uuid.UUID, actor string) (*model.StockCount, error), msg string) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid count ID")
	}

	count, err := op(id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "data": count})
}
