package handler

import (
	"go-medwarehouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	result, err := h.service.Login(in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	id, err := actorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "not authenticated"})
	}

	profile, err := h.service.GetProfile(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := actorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "not authenticated"})
	}

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.ChangePassword(id, body.OldPassword, body.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}
