package handler

import (
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{service: s}
}

type PushRequest struct {
	Data    *model.Workspace `json:"data"`
	Version *int64           `json:"version"`
}

// Fetch returns the caller's document, creating it on first use
// GET /api/v1/sync
func (h *SyncHandler) Fetch(c *fiber.Ctx) error {
	doc, err := h.service.Fetch(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": doc})
}

// Push replaces the caller's document
// POST /api/v1/sync
func (h *SyncHandler) Push(c *fiber.Ctx) error {
	var req PushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	doc, err := h.service.Push(c.UserContext(), identity(c), req.Data, req.Version)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version, "updatedAt": doc.UpdatedAt})
}

// Status GET /api/v1/sync/status
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.service.Status(identity(c)))
}
