package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/service"
	"go-cashbook-ws/internal/syncer"
	"go-cashbook-ws/internal/ws"
	"go-cashbook-ws/pkg/docstore"
	"go-cashbook-ws/pkg/jwt"
	"go-cashbook-ws/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app    *fiber.App
	tokens *jwt.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := docstore.NewFileStore(t.TempDir(), model.DocumentName)
	require.NoError(t, err)

	repo := repository.NewWorkspaceRepo(store, nil, syncer.New(time.Hour, log), log)
	hub := ws.NewHub(log)
	go hub.Run()
	tokens := jwt.NewManager("test-secret", "cashbooks", time.Hour)

	businesses := service.NewBusinessService(repo, hub, log)
	h := Handlers{
		Auth:     NewAuthHandler(service.NewAuthService(tokens)),
		User:     NewUserHandler(service.NewUserService(repo, hub, log)),
		Sync:     NewSyncHandler(service.NewSyncService(repo, hub, log)),
		Business: NewBusinessHandler(businesses),
		Team: NewTeamHandler(businesses, service.NewInvitationService(repo, hub, log,
			invite.NewCodec("invite-secret"), mailer.NewLog(log),
			service.InvitationConfig{AppURL: "http://localhost:3000", MailFrom: "noreply@example.com"})),
		Cashbook:    NewCashbookHandler(service.NewCashbookService(repo, hub, log)),
		Transaction: NewTransactionHandler(service.NewTransactionService(repo, hub, log)),
		Dashboard:   NewDashboardHandler(service.NewDashboardService(repo, log)),
	}

	app := fiber.New()
	SetupRoutes(app, h, tokens, hub)
	return &testApp{app: app, tokens: tokens}
}

func (a *testApp) token(t *testing.T, userID, email string) string {
	t.Helper()
	tok, err := a.tokens.GenerateToken(userID, email, "Test "+userID, "", "")
	require.NoError(t, err)
	return tok
}

// do sends a request and decodes a JSON response body into out when set.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type errorBody struct {
	Error string `json:"error"`
}

func TestRequiresAuth(t *testing.T) {
	a := newTestApp(t)

	var body errorBody
	resp := a.do(t, "GET", "/api/v1/sync", "", nil, &body)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Missing authorization token", body.Error)

	resp = a.do(t, "GET", "/api/v1/sync", "garbage", nil, &body)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", body.Error)
}

func TestValidateToken(t *testing.T) {
	a := newTestApp(t)
	tok := a.token(t, "u_1", "one@example.com")

	var ok struct {
		Valid bool       `json:"valid"`
		User  model.User `json:"user"`
	}
	resp := a.do(t, "POST", "/api/v1/auth/validate-token", "", fiber.Map{"token": tok}, &ok)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, ok.Valid)
	assert.Equal(t, "one@example.com", ok.User.Email)

	resp = a.do(t, "POST", "/api/v1/auth/validate-token", "", fiber.Map{"token": "nope"}, nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLedgerFlow(t *testing.T) {
	a := newTestApp(t)
	tok := a.token(t, "u_1", "one@example.com")

	var doc struct {
		Data model.Workspace `json:"data"`
	}
	resp := a.do(t, "GET", "/api/v1/sync", tok, nil, &doc)
	require.Equal(t, 200, resp.StatusCode)
	bid := doc.Data.ActiveBusinessID
	require.NotEmpty(t, bid)

	var created struct {
		Data service.CashbookSummary `json:"data"`
	}
	resp = a.do(t, "POST", "/api/v1/businesses/"+bid+"/cashbooks", tok, fiber.Map{"name": "Main"}, &created)
	require.Equal(t, 201, resp.StatusCode)
	cid := created.Data.ID

	var added struct {
		Data service.Entry `json:"data"`
	}
	resp = a.do(t, "POST", "/api/v1/cashbooks/"+cid+"/transactions", tok, fiber.Map{
		"amount": "1200.50", "type": "IN", "category": "Sales", "paymentMode": "UPI",
	}, &added)
	require.Equal(t, 201, resp.StatusCode)
	require.NotNil(t, added.Data.Balance)
	assert.Equal(t, "1200.5", added.Data.Balance.String())

	resp = a.do(t, "POST", "/api/v1/cashbooks/"+cid+"/transactions", tok, fiber.Map{
		"amount": 200, "type": "OUT", "category": "Rent", "paymentMode": "Bank", "remark": "March rent",
	}, nil)
	require.Equal(t, 201, resp.StatusCode)

	var stats model.Stats
	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/stats", tok, nil, &stats)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "1000.5", stats.NetBalance.String())

	var list []service.Entry
	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/transactions?type=OUT&q=rent", tok, nil, &list)
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Rent", list[0].Category)

	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/transactions?from=03-01-2026", tok, nil, nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp = a.do(t, "DELETE", "/api/v1/cashbooks/"+cid+"/transactions/"+added.Data.ID, tok, nil, nil)
	require.Equal(t, 200, resp.StatusCode)
	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/stats", tok, nil, &stats)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "-200", stats.NetBalance.String())

	var errBody errorBody
	resp = a.do(t, "DELETE", "/api/v1/cashbooks/"+cid+"/transactions/"+added.Data.ID, tok, nil, &errBody)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "transaction not found", errBody.Error)

	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/export", tok, nil, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, service.ExcelContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	var flow struct {
		Period int `json:"period"`
	}
	resp = a.do(t, "GET", "/api/v1/cashbooks/"+cid+"/cash-flow?days=abc", tok, nil, &flow)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 7, flow.Period)

	resp = a.do(t, "GET", "/api/v1/businesses/"+bid+"/summary?range=3m", tok, nil, nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestValidationError(t *testing.T) {
	a := newTestApp(t)
	tok := a.token(t, "u_1", "one@example.com")

	var body errorBody
	resp := a.do(t, "POST", "/api/v1/businesses", tok, fiber.Map{"industry": "retail"}, &body)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Validation failed: Field 'BusinessRequest.Name' failed on tag 'required'", body.Error)

	req := httptest.NewRequest("POST", "/api/v1/businesses", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestStaffPermissions(t *testing.T) {
	a := newTestApp(t)
	staffTok := a.token(t, "u_staff", "staff@example.com")

	doc := model.Workspace{
		User: model.User{ID: "u_staff", Email: "staff@example.com"},
		Businesses: []model.Business{{
			ID:   "b_1",
			Name: "Shop",
			Members: []model.Member{
				{User: model.User{ID: "u_owner"}, Role: model.RoleOwner, Status: model.MemberActive},
				{User: model.User{ID: "u_staff"}, Role: model.RoleStaff, Status: model.MemberActive},
			},
		}},
		Cashbooks: []model.Cashbook{{
			ID: "cb_1", BusinessID: "b_1", Name: "Till",
			BookMembers: []model.BookMember{{User: model.User{ID: "u_staff"}, BookRole: model.BookRoleViewer}},
		}},
		ActiveBusinessID: "b_1",
	}
	resp := a.do(t, "POST", "/api/v1/sync", staffTok, fiber.Map{"data": doc}, nil)
	require.Equal(t, 200, resp.StatusCode)

	var settings service.Settings
	resp = a.do(t, "GET", "/api/v1/businesses/b_1/settings", staffTok, nil, &settings)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, settings.Pages, 1)

	resp = a.do(t, "POST", "/api/v1/cashbooks/cb_1/transactions", staffTok, fiber.Map{
		"amount": 10, "type": "IN", "category": "x", "paymentMode": "Cash",
	}, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp = a.do(t, "DELETE", "/api/v1/businesses/b_1", staffTok, nil, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp = a.do(t, "GET", "/api/v1/cashbooks/cb_404", staffTok, nil, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSyncConflict(t *testing.T) {
	a := newTestApp(t)
	tok := a.token(t, "u_1", "one@example.com")

	var doc struct {
		Data model.Workspace `json:"data"`
	}
	a.do(t, "GET", "/api/v1/sync", tok, nil, &doc)

	resp := a.do(t, "POST", "/api/v1/sync", tok, fiber.Map{"data": doc.Data, "version": 42}, nil)
	assert.Equal(t, 409, resp.StatusCode)

	var pushed struct {
		Version int64 `json:"version"`
	}
	resp = a.do(t, "POST", "/api/v1/sync", tok, fiber.Map{"data": doc.Data, "version": doc.Data.Version}, &pushed)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, doc.Data.Version+1, pushed.Version)

	var status service.SyncStatus
	resp = a.do(t, "GET", "/api/v1/sync/status", tok, nil, &status)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, syncer.StatusSyncing, status.Status)
}

func TestInvitationRoutes(t *testing.T) {
	a := newTestApp(t)
	ownerTok := a.token(t, "u_owner", "owner@example.com")
	guestTok := a.token(t, "u_guest", "guest@example.com")

	var body errorBody
	resp := a.do(t, "GET", "/api/v1/invitations/not-a-token", "", nil, &body)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid invitation link.", body.Error)

	var doc struct {
		Data model.Workspace `json:"data"`
	}
	a.do(t, "GET", "/api/v1/sync", ownerTok, nil, &doc)
	bid := doc.Data.ActiveBusinessID

	var invited struct {
		Data service.InvitationResult `json:"data"`
	}
	resp = a.do(t, "POST", "/api/v1/businesses/"+bid+"/invitations", ownerTok, fiber.Map{"email": "guest@example.com", "role": "PARTNER"}, &invited)
	require.Equal(t, 201, resp.StatusCode)

	var preview invite.Payload
	resp = a.do(t, "GET", "/api/v1/invitations/"+invited.Data.Token, "", nil, &preview)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, model.RolePartner, preview.Role)

	resp = a.do(t, "POST", "/api/v1/invitations/"+invited.Data.Token+"/accept", ownerTok, nil, nil)
	assert.Equal(t, 403, resp.StatusCode, "only the invited address may accept")

	resp = a.do(t, "POST", "/api/v1/invitations/"+invited.Data.Token+"/accept", guestTok, nil, nil)
	require.Equal(t, 200, resp.StatusCode)

	var members []model.Member
	resp = a.do(t, "GET", fmt.Sprintf("/api/v1/businesses/%s/members", bid), ownerTok, nil, &members)
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, members, 2)
	assert.Equal(t, model.MemberActive, members[1].Status)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 401, statusOf(fmt.Errorf("%w: drive said 401", service.ErrSessionExpired)))
	assert.Equal(t, 409, statusOf(service.ErrConflict))
	assert.Equal(t, 502, statusOf(service.ErrMailDelivery))
	assert.Equal(t, 400, statusOf(invite.ErrExpired))
	assert.Equal(t, 500, statusOf(io.ErrUnexpectedEOF))
}
