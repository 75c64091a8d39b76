package handler

import (
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	service service.BusinessService
}

func NewBusinessHandler(s service.BusinessService) *BusinessHandler {
	return &BusinessHandler{service: s}
}

func (h *BusinessHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var req service.BusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	b, err := h.service.Create(c.UserContext(), identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Business created", "data": b})
}

func (h *BusinessHandler) Get(c *fiber.Ctx) error {
	b, err := h.service.Get(c.UserContext(), identity(c), c.Params("bid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(b)
}

func (h *BusinessHandler) Update(c *fiber.Ctx) error {
	var req service.BusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	b, err := h.service.Update(c.UserContext(), identity(c), c.Params("bid"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Business updated", "data": b})
}

func (h *BusinessHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), identity(c), c.Params("bid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Business deleted"})
}

func (h *BusinessHandler) Activate(c *fiber.Ctx) error {
	if err := h.service.Activate(c.UserContext(), identity(c), c.Params("bid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Business activated", "activeBusinessId": c.Params("bid")})
}

func (h *BusinessHandler) Settings(c *fiber.Ctx) error {
	settings, err := h.service.Settings(c.UserContext(), identity(c), c.Params("bid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(settings)
}
