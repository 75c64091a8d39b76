package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/syncer"
	"go-cashbook-ws/pkg/docstore"
	"go-cashbook-ws/pkg/mailer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	owner = Identity{UserID: "u_owner", Email: "owner@example.com", Name: "Olive"}
	staff = Identity{UserID: "u_staff", Email: "staff@example.com", Name: "Sam"}
	fixed = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
)

type sentMail struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (m *sentMail) Send(ctx context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.msgs = append(m.msgs, msg)
	return "email_1", nil
}

type env struct {
	repo         repository.WorkspaceRepository
	sync         *syncService
	users        *userService
	businesses   *businessService
	invitations  *invitationService
	cashbooks    *cashbookService
	transactions *transactionService
	dashboard    *dashboardService
	mail         *sentMail
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := docstore.NewFileStore(t.TempDir(), model.DocumentName)
	require.NoError(t, err)
	return newEnvWithStore(t, store)
}

func newEnvWithStore(t *testing.T, store docstore.Store) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewWorkspaceRepo(store, nil, syncer.New(time.Hour, log), log)
	mail := &sentMail{}
	clock := func() time.Time { return fixed }

	e := &env{
		repo:         repo,
		sync:         NewSyncService(repo, nil, log).(*syncService),
		users:        NewUserService(repo, nil, log).(*userService),
		businesses:   NewBusinessService(repo, nil, log).(*businessService),
		cashbooks:    NewCashbookService(repo, nil, log).(*cashbookService),
		transactions: NewTransactionService(repo, nil, log).(*transactionService),
		dashboard:    NewDashboardService(repo, log).(*dashboardService),
		mail:         mail,
	}
	e.invitations = NewInvitationService(repo, nil, log,
		invite.NewCodec("test-secret").WithClock(clock), mail,
		InvitationConfig{AppURL: "https://app.example.com/", MailFrom: "noreply@example.com"},
	).(*invitationService)

	e.sync.now = clock
	e.users.now = clock
	e.businesses.now = clock
	e.invitations.now = clock
	e.cashbooks.now = clock
	e.transactions.now = clock
	e.dashboard.now = clock
	return e
}

// activeBusiness returns the id of the caller's initial business.
func (e *env) activeBusiness(t *testing.T, id Identity) string {
	t.Helper()
	doc, err := e.sync.Fetch(context.Background(), id)
	require.NoError(t, err)
	return doc.ActiveBusinessID
}

func (e *env) newCashbook(t *testing.T, id Identity, businessID, name string) string {
	t.Helper()
	cb, err := e.cashbooks.Create(context.Background(), id, businessID, &CashbookRequest{Name: name})
	require.NoError(t, err)
	return cb.ID
}

func (e *env) add(t *testing.T, id Identity, cashbookID string, typ model.TransactionType, amount int64, date string) *Entry {
	t.Helper()
	entry, err := e.transactions.Add(context.Background(), id, cashbookID, &TransactionRequest{
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
		Category:    "General",
		PaymentMode: model.PaymentCash,
		Date:        date,
	})
	require.NoError(t, err)
	return entry
}

// sharedWorkspace builds a document for staff in which the owner's business
// and one cashbook are present, with staff holding the given book role.
func sharedWorkspace(bookRole model.BookRole, perms *model.OperatorPermissions) *model.Workspace {
	ownerUser, staffUser := owner.User(), staff.User()
	b := model.Business{
		ID:   "b_shared",
		Name: "Shared Shop",
		Members: []model.Member{
			{User: ownerUser, Role: model.RoleOwner, Status: model.MemberActive},
			{User: staffUser, Role: model.RoleStaff, Status: model.MemberActive},
		},
	}
	c := model.Cashbook{ID: "cb_shared", BusinessID: b.ID, Name: "Till"}
	c.AddTransaction(model.Transaction{ID: "tx_owner", Amount: decimal.NewFromInt(500), Type: model.TxIn, CreatedBy: ownerUser.ID, Date: fixed})
	if bookRole != "" {
		c.SetBookMember(staffUser, bookRole, perms)
	}
	return &model.Workspace{
		User:             staffUser,
		Businesses:       []model.Business{b},
		Cashbooks:        []model.Cashbook{c},
		ActiveBusinessID: b.ID,
	}
}

func (e *env) seedStaff(t *testing.T, bookRole model.BookRole, perms *model.OperatorPermissions) {
	t.Helper()
	_, err := e.sync.Push(context.Background(), staff, sharedWorkspace(bookRole, perms), nil)
	require.NoError(t, err)
}

// tokenStore refuses requests without an access token, like the Drive backend.
type tokenStore struct {
	docstore.Store
}

func (s tokenStore) check(owner docstore.Owner) error {
	if owner.AccessToken == "" {
		return docstore.ErrUnauthorized
	}
	return nil
}

func (s tokenStore) Find(ctx context.Context, owner docstore.Owner) (string, error) {
	if err := s.check(owner); err != nil {
		return "", err
	}
	return s.Store.Find(ctx, owner)
}

func (s tokenStore) Read(ctx context.Context, owner docstore.Owner, fileID string) ([]byte, error) {
	if err := s.check(owner); err != nil {
		return nil, err
	}
	return s.Store.Read(ctx, owner, fileID)
}

func (s tokenStore) Create(ctx context.Context, owner docstore.Owner, data []byte) (string, error) {
	if err := s.check(owner); err != nil {
		return "", err
	}
	return s.Store.Create(ctx, owner, data)
}

func (s tokenStore) Update(ctx context.Context, owner docstore.Owner, fileID string, data []byte) error {
	if err := s.check(owner); err != nil {
		return err
	}
	return s.Store.Update(ctx, owner, fileID, data)
}
