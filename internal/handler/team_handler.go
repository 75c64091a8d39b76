package handler

import (
	"go-cashbook-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TeamHandler serves the member roster and invitations of a business.
type TeamHandler struct {
	businesses  service.BusinessService
	invitations service.InvitationService
}

func NewTeamHandler(b service.BusinessService, i service.InvitationService) *TeamHandler {
	return &TeamHandler{businesses: b, invitations: i}
}

func (h *TeamHandler) Members(c *fiber.Ctx) error {
	members, err := h.businesses.Members(c.UserContext(), identity(c), c.Params("bid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(members)
}

func (h *TeamHandler) ChangeRole(c *fiber.Ctx) error {
	var req service.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	m, err := h.businesses.ChangeMemberRole(c.UserContext(), identity(c), c.Params("bid"), c.Params("uid"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member updated", "data": m})
}

func (h *TeamHandler) Remove(c *fiber.Ctx) error {
	if err := h.businesses.RemoveMember(c.UserContext(), identity(c), c.Params("bid"), c.Params("uid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

// Invite POST /api/v1/businesses/:bid/invitations
func (h *TeamHandler) Invite(c *fiber.Ctx) error {
	var req service.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.invitations.Invite(c.UserContext(), identity(c), c.Params("bid"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": res})
}

// Preview decodes an invitation without accepting it
// GET /api/v1/invitations/:token
func (h *TeamHandler) Preview(c *fiber.Ctx) error {
	p, err := h.invitations.Preview(c.Params("token"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// Accept POST /api/v1/invitations/:token/accept
func (h *TeamHandler) Accept(c *fiber.Ctx) error {
	b, err := h.invitations.Accept(c.UserContext(), identity(c), c.Params("token"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invitation accepted", "data": b})
}
