package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockMovementHandler struct {
	service service.StockMovementService
}

func NewStockMovementHandler(s service.StockMovementService) *StockMovementHandler {
	return &StockMovementHandler{service: s}
}

// Create records a manual movement (receipt, issue, return, disposal,
// adjustment or found).
func (h *StockMovementHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Type        model.MovementType `json:"type"`
		ProductID   uuid.UUID          `json:"product_id"`
		WarehouseID uuid.UUID          `json:"warehouse_id"`
		BatchID     *uuid.UUID         `json:"batch_id,omitempty"`
		Quantity    int                `json:"quantity"`
		UnitPrice   *decimal.Decimal   `json:"unit_price,omitempty"`
		Reason      string             `json:"reason"`
		Notes       string             `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	movement, err := h.service.Create(service.MovementInput{
		Type:        body.Type,
		ProductID:   body.ProductID,
		WarehouseID: body.WarehouseID,
		BatchID:     body.BatchID,
		Quantity:    body.Quantity,
		UnitPrice:   body.UnitPrice,
		Reason:      body.Reason,
		Notes:       body.Notes,
		Actor:       actor(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": movement})
}

func (h *StockMovementHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.MovementFilters{
		Type:          c.Query("type"),
		ProductID:     queryUUID(c, "product_id"),
		WarehouseID:   queryUUID(c, "warehouse_id"),
		BatchID:       queryUUID(c, "batch_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   queryUUID(c, "reference_id"),
		DateFrom:      queryDate(c, "date_from"),
		DateTo:        queryDate(c, "date_to"),
	}

	movements, total, err := h.service.GetMovements(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(movements, total, p))
}

func (h *StockMovementHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid movement ID")
	}

	movement, err := h.service.GetMovement(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movement)
}

func (h *StockMovementHandler) ProductHistory(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "productId")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	movements, err := h.service.GetProductHistory(id, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func (h *StockMovementHandler) Summary(c *fiber.Ctx) error {
	summaries, err := h.service.Summarize(
		queryUUID(c, "warehouse_id"),
		queryDate(c, "date_from"),
		queryDate(c, "date_to"),
	)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summaries)
}
