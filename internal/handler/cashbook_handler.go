package handler

import (
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CashbookHandler struct {
	service service.CashbookService
}

func NewCashbookHandler(s service.CashbookService) *CashbookHandler {
	return &CashbookHandler{service: s}
}

// List GET /api/v1/businesses/:bid/cashbooks
func (h *CashbookHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), identity(c), c.Params("bid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// Create POST /api/v1/businesses/:bid/cashbooks
func (h *CashbookHandler) Create(c *fiber.Ctx) error {
	var req service.CashbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	cb, err := h.service.Create(c.UserContext(), identity(c), c.Params("bid"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Cashbook created", "data": cb})
}

func (h *CashbookHandler) Get(c *fiber.Ctx) error {
	cb, err := h.service.Get(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cb)
}

func (h *CashbookHandler) Rename(c *fiber.Ctx) error {
	var req service.CashbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	cb, err := h.service.Rename(c.UserContext(), identity(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cashbook updated", "data": cb})
}

func (h *CashbookHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), identity(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cashbook deleted"})
}

// SetMember PUT /api/v1/cashbooks/:id/members/:uid
func (h *CashbookHandler) SetMember(c *fiber.Ctx) error {
	var req service.BookMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	m, err := h.service.SetMember(c.UserContext(), identity(c), c.Params("id"), c.Params("uid"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Book member updated", "data": m})
}

func (h *CashbookHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.service.RemoveMember(c.UserContext(), identity(c), c.Params("id"), c.Params("uid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Book member removed"})
}

// Recompute POST /api/v1/cashbooks/:id/recompute
func (h *CashbookHandler) Recompute(c *fiber.Ctx) error {
	stats, err := h.service.Recompute(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Balances recomputed", "stats": stats})
}
