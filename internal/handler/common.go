package handler

import (
	"time"

	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actor returns the authenticated username for audit columns.
func actor(c *fiber.Ctx) string {
	if username, ok := c.Locals("username").(string); ok && username != "" {
		return username
	}
	return "system"
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(401, "not authenticated")
	}
	return uuid.Parse(raw)
}

// fail maps a service error to its HTTP status.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg})
}

func paging(c *fiber.Ctx) pagination.Params {
	return pagination.NewParams(c.QueryInt("page", 1), c.QueryInt("limit", 20))
}

func pathUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryUUID returns nil when the parameter is absent or malformed.
func queryUUID(c *fiber.Ctx, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// queryDate parses YYYY-MM-DD or RFC3339 values; nil when absent or malformed.
func queryDate(c *fiber.Ctx, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
