package handler

import (
	"fmt"
	"strconv"

	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// Stats GET /api/v1/cashbooks/:id/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// CashFlow returns per-day totals for charts
// Query params: days (default 7)
func (h *DashboardHandler) CashFlow(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}
	if days > 366 {
		days = 366
	}

	data, err := h.service.CashFlow(c.UserContext(), identity(c), c.Params("id"), days)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// Summary GET /api/v1/businesses/:bid/summary?range=7d|1m|3m|6m|12m
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	report, err := h.service.Summary(c.UserContext(), identity(c), c.Params("bid"), c.Query("range", "7d"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// Export downloads the day book as .xlsx
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	export, err := h.service.Export(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, service.ExcelContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	return c.Send(export.Data)
}
