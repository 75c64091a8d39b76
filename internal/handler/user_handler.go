package handler

import (
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// GetProfile GET /api/v1/me
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.service.GetProfile(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile PUT /api/v1/me
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.service.UpdateProfile(c.UserContext(), identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": user})
}
