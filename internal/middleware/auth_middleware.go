package middleware

import (
	"strings"

	"go-cashbook-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates the session token and sets the
// caller's identity in context
func RequireAuth(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		return authenticate(c, tokens, parts[1])
	}
}

// RequireAuthQuery reads the token from the "token" query parameter, for
// websocket upgrades where browsers cannot set headers.
func RequireAuthQuery(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, tokens, token)
	}
}

func authenticate(c *fiber.Ctx, tokens *jwt.Manager, tokenString string) error {
	claims, err := tokens.ValidateToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
	c.Locals("user_avatar", claims.Avatar)
	c.Locals("provider_token", claims.ProviderToken)

	return c.Next()
}
