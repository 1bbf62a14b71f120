package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

func (h *StockHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.StockFilters{
		ProductID:   queryUUID(c, "product_id"),
		WarehouseID: queryUUID(c, "warehouse_id"),
		BatchID:     queryUUID(c, "batch_id"),
		OutOfStock:  c.Query("out_of_stock") == "true",
		HasReserved: c.Query("has_reserved") == "true",
	}

	stocks, total, err := h.service.GetStocks(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(stocks, total, p))
}

func (h *StockHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid stock ID")
	}

	stock, err := h.service.GetStock(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stock)
}

func (h *StockHandler) ByProduct(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "productId")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	summary, err := h.service.GetProductStock(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

func (h *StockHandler) ByWarehouse(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "warehouseId")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	stocks, err := h.service.GetWarehouseStock(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stocks)
}

func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.service.Reserve, "Stock reserved")
}

func (h *StockHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.service.Release, "Reservation released")
}

func (h *StockHandler) reservation(c *fiber.Ctx, op func(id uuid.UUID, qty int, actor string) (*model.Stock, error), msg string) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid stock ID")
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	stock, err := op(id, body.Quantity, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "data": stock})
}

func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.service.LowStock()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (h *StockHandler) Verify(c *fiber.Ctx) error {
	productID := queryUUID(c, "product_id")
	warehouseID := queryUUID(c, "warehouse_id")
	if productID == nil || warehouseID == nil {
		return badRequest(c, "product_id and warehouse_id are required")
	}

	check, err := h.service.VerifyLedger(*productID, *warehouseID, queryUUID(c, "batch_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(check)
}
