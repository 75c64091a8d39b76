package handler

import (
	"time"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// List GET /api/v1/cashbooks/:id/transactions
// Query params: type, category, payment_mode, from, to (YYYY-MM-DD), q
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter := service.TransactionFilter{
		Type:        model.TransactionType(c.Query("type")),
		Category:    c.Query("category"),
		PaymentMode: model.PaymentMode(c.Query("payment_mode")),
		Query:       c.Query("q"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid 'from' date, use YYYY-MM-DD"})
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid 'to' date, use YYYY-MM-DD"})
		}
		filter.To = t
	}

	entries, err := h.service.List(c.UserContext(), identity(c), c.Params("id"), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

func (h *TransactionHandler) Add(c *fiber.Ctx) error {
	var req service.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.Add(c.UserContext(), identity(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": entry})
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), identity(c), c.Params("id"), c.Params("txid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
