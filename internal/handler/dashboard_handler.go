package handler

import (
	"go-medwarehouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(queryUUID(c, "warehouse_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}
