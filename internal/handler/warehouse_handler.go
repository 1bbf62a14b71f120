package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WarehouseHandler struct {
	service service.WarehouseService
}

func NewWarehouseHandler(s service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{service: s}
}

func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var warehouse model.Warehouse
	if err := c.BodyParser(&warehouse); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.Create(&warehouse, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Warehouse created", "data": warehouse})
}

func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	warehouses, err := h.service.GetWarehouses()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(warehouses)
}

func (h *WarehouseHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	warehouse, err := h.service.GetWarehouse(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(warehouse)
}

func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	var req model.Warehouse
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	warehouse, err := h.service.Update(id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Warehouse updated", "data": warehouse})
}

func (h *WarehouseHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	warehouse, err := h.service.Deactivate(id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Warehouse deactivated", "data": warehouse})
}

func (h *WarehouseHandler) CreateZone(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	var zone model.Zone
	if err := c.BodyParser(&zone); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.CreateZone(id, &zone, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Zone created", "data": zone})
}

func (h *WarehouseHandler) CreateShelf(c *fiber.Ctx) error {
	zoneID, ok := pathUUID(c, "zoneId")
	if !ok {
		return badRequest(c, "Invalid zone ID")
	}

	var shelf model.Shelf
	if err := c.BodyParser(&shelf); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.CreateShelf(zoneID, &shelf, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Shelf created", "data": shelf})
}

func (h *WarehouseHandler) Zones(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid warehouse ID")
	}

	zones, err := h.service.GetZones(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(zones)
}
