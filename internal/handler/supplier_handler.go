package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	service service.SupplierService
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s}
}

func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.Create(&supplier, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *SupplierHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	suppliers, total, err := h.service.GetSuppliers(p, c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(suppliers, total, p))
}

func (h *SupplierHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}

	supplier, err := h.service.GetSupplier(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(supplier)
}

func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}

	var req model.Supplier
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	supplier, err := h.service.Update(id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}

	if err := h.service.Delete(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}
