package handler

import (
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p := paging(c)
	notifications, total, err := h.service.GetNotifications(p, c.Query("unread") == "true")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pagination.NewResponse(notifications, total, p))
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.service.MarkRead(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}
