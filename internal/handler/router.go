package handler

import (
	"go-cashbook-ws/internal/middleware"
	"go-cashbook-ws/internal/ws"
	"go-cashbook-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler mounted by SetupRoutes.
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Sync        *SyncHandler
	Business    *BusinessHandler
	Team        *TeamHandler
	Cashbook    *CashbookHandler
	Transaction *TransactionHandler
	Dashboard   *DashboardHandler
}

func SetupRoutes(app *fiber.App, h Handlers, tokens *jwt.Manager, hub *ws.Hub) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/validate-token", h.Auth.ValidateToken)
	api.Get("/invitations/:token", h.Team.Preview)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(tokens))

	protected.Get("/me", h.User.GetProfile)
	protected.Put("/me", h.User.UpdateProfile)

	protected.Get("/sync", h.Sync.Fetch)
	protected.Post("/sync", h.Sync.Push)
	protected.Get("/sync/status", h.Sync.Status)

	protected.Get("/businesses", h.Business.List)
	protected.Post("/businesses", h.Business.Create)
	protected.Get("/businesses/:bid", h.Business.Get)
	protected.Put("/businesses/:bid", h.Business.Update)
	protected.Delete("/businesses/:bid", h.Business.Delete)
	protected.Post("/businesses/:bid/activate", h.Business.Activate)
	protected.Get("/businesses/:bid/settings", h.Business.Settings)
	protected.Get("/businesses/:bid/summary", h.Dashboard.Summary)

	// Team
	protected.Get("/businesses/:bid/members", h.Team.Members)
	protected.Put("/businesses/:bid/members/:uid", h.Team.ChangeRole)
	protected.Delete("/businesses/:bid/members/:uid", h.Team.Remove)
	protected.Post("/businesses/:bid/invitations", h.Team.Invite)
	protected.Post("/invitations/:token/accept", h.Team.Accept)

	// Cashbooks
	protected.Get("/businesses/:bid/cashbooks", h.Cashbook.List)
	protected.Post("/businesses/:bid/cashbooks", h.Cashbook.Create)
	protected.Get("/cashbooks/:id", h.Cashbook.Get)
	protected.Put("/cashbooks/:id", h.Cashbook.Rename)
	protected.Delete("/cashbooks/:id", h.Cashbook.Delete)
	protected.Put("/cashbooks/:id/members/:uid", h.Cashbook.SetMember)
	protected.Delete("/cashbooks/:id/members/:uid", h.Cashbook.RemoveMember)
	protected.Post("/cashbooks/:id/recompute", h.Cashbook.Recompute)

	// Transactions & reports
	protected.Get("/cashbooks/:id/transactions", h.Transaction.List)
	protected.Post("/cashbooks/:id/transactions", h.Transaction.Add)
	protected.Delete("/cashbooks/:id/transactions/:txid", h.Transaction.Delete)
	protected.Get("/cashbooks/:id/stats", h.Dashboard.Stats)
	protected.Get("/cashbooks/:id/cash-flow", h.Dashboard.CashFlow)
	protected.Get("/cashbooks/:id/export", h.Dashboard.Export)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireAuthQuery(tokens))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		client := ws.Client{UserID: userID, Conn: c}
		hub.Register <- client
		defer func() { hub.Unregister <- client }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
