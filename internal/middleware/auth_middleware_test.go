package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"go-cashbook-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/who", h, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string) + "|" + c.Locals("provider_token").(string))
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tokens := jwt.NewManager("mw-secret", "cashbooks", time.Hour)
	token, err := tokens.GenerateToken("u1", "a@x.com", "A", "", "ya29.token")
	require.NoError(t, err)
	app := newApp(RequireAuth(tokens))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + token, fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/who", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireAuthQuery(t *testing.T) {
	tokens := jwt.NewManager("mw-secret", "cashbooks", time.Hour)
	token, err := tokens.GenerateToken("u1", "a@x.com", "A", "", "")
	require.NoError(t, err)
	app := newApp(RequireAuthQuery(tokens))

	resp, err := app.Test(httptest.NewRequest("GET", "/who", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/who?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestForeignSecretRejected(t *testing.T) {
	token, err := jwt.NewManager("other-secret", "cashbooks", time.Hour).GenerateToken("u1", "a@x.com", "A", "", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/who", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newApp(RequireAuth(jwt.NewManager("mw-secret", "cashbooks", time.Hour))).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
