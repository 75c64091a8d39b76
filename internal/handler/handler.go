package handler

import (
	"errors"
	"log/slog"

	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/service"
	"go-cashbook-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Helpers to read the caller set by auth middleware
func getUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, _ := c.Locals("user_name").(string)
	return userName
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail, _ := c.Locals("user_email").(string)
	return userEmail
}

func identity(c *fiber.Ctx) service.Identity {
	avatar, _ := c.Locals("user_avatar").(string)
	providerToken, _ := c.Locals("provider_token").(string)
	return service.Identity{
		UserID:        getUserID(c),
		Email:         getUserEmail(c),
		Name:          getUserName(c),
		Avatar:        avatar,
		ProviderToken: providerToken,
	}
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, invite.ErrInvalid),
		errors.Is(err, invite.ErrExpired):
		return 400
	case errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return 401
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrEmailMismatch),
		errors.Is(err, service.ErrOwnerImmutable):
		return 403
	case errors.Is(err, service.ErrBusinessNotFound),
		errors.Is(err, service.ErrCashbookNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, repository.ErrWorkspaceNotFound):
		return 404
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyMember):
		return 409
	case errors.Is(err, service.ErrMailDelivery):
		return 502
	}
	return 500
}

func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == 500 {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if errors.Is(err, service.ErrSessionExpired) {
		return c.Status(status).JSON(fiber.Map{"error": service.ErrSessionExpired.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
