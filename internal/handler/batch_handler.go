package handler

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type BatchHandler struct {
	service service.BatchService
}

func NewBatchHandler(s service.BatchService) *BatchHandler {
	return &BatchHandler{service: s}
}

func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var batch model.Batch
	if err := c.BodyParser(&batch); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.Create(&batch, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Batch created", "data": batch})
}

func (h *BatchHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	f := repository.BatchFilters{
		ProductID:          queryUUID(c, "product_id"),
		ExpiringWithinDays: c.QueryInt("expiring_within_days", 0),
		Search:             c.Query("search"),
	}
	if raw := c.Query("is_expired"); raw != "" {
		expired := raw == "true"
		f.IsExpired = &expired
	}
	if raw := c.Query("is_recalled"); raw != "" {
		recalled := raw == "true"
		f.IsRecalled = &recalled
	}

	batches, total, err := h.service.GetBatches(p, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(batches, total, p))
}

func (h *BatchHandler) Get(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid batch ID")
	}

	batch, err := h.service.GetBatch(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(batch)
}

func (h *BatchHandler) Update(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid batch ID")
	}

	var req model.Batch
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	batch, err := h.service.Update(id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Batch updated", "data": batch})
}

func (h *BatchHandler) Recall(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid batch ID")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	batch, err := h.service.Recall(id, body.Reason, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Batch recalled", "data": batch})
}

func (h *BatchHandler) Expiring(c *fiber.Ctx) error {
	batches, err := h.service.GetExpiring(c.QueryInt("days", model.ExpiryWarningDays))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(batches)
}

func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid batch ID")
	}

	if err := h.service.Delete(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Batch deleted"})
}
