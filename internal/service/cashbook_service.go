package service

import (
	"context"
	"log/slog"
	"time"

	"go-cashbook-ws/internal/access"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"

	"github.com/shopspring/decimal"
)

type CashbookService interface {
	List(ctx context.Context, id Identity, businessID string) ([]CashbookSummary, error)
	Create(ctx context.Context, id Identity, businessID string, req *CashbookRequest) (*CashbookSummary, error)
	Get(ctx context.Context, id Identity, cashbookID string) (*CashbookDetail, error)
	Rename(ctx context.Context, id Identity, cashbookID string, req *CashbookRequest) (*CashbookSummary, error)
	Delete(ctx context.Context, id Identity, cashbookID string) error
	SetMember(ctx context.Context, id Identity, cashbookID, userID string, req *BookMemberRequest) (*model.BookMember, error)
	RemoveMember(ctx context.Context, id Identity, cashbookID, userID string) error
	Recompute(ctx context.Context, id Identity, cashbookID string) (*model.Stats, error)
}

type CashbookRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type BookMemberRequest struct {
	BookRole    model.BookRole             `json:"bookRole" validate:"required,oneof=ADMIN OPERATOR VIEWER"`
	Permissions *model.OperatorPermissions `json:"permissions"`
}

// CashbookSummary is a cashbook as seen by one caller; Stats is omitted
// when the caller may not see balances.
type CashbookSummary struct {
	ID          string              `json:"id"`
	BusinessID  string              `json:"businessId"`
	Name        string              `json:"name"`
	Stats       *model.Stats        `json:"stats,omitempty"`
	Entries     int                 `json:"entries"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Access      access.Capabilities `json:"access"`
}

type CashbookDetail struct {
	CashbookSummary
	BookMembers  []model.BookMember `json:"bookMembers"`
	Transactions []Entry            `json:"transactions"`
}

// Entry shadows the running balance so it can be withheld.
type Entry struct {
	model.Transaction
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

type cashbookService struct {
	workspaces
}

func NewCashbookService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) CashbookService {
	return &cashbookService{workspaces: newWorkspaces(repo, hub, log)}
}

func summarize(c *model.Cashbook, book access.Book, userID string) CashbookSummary {
	out := CashbookSummary{
		ID:          c.ID,
		BusinessID:  c.BusinessID,
		Name:        c.Name,
		Entries:     len(c.Visible(userID, !book.CanViewOtherEntries())),
		LastUpdated: c.LastUpdated,
		Access:      book.Capabilities(),
	}
	if book.CanViewBalance() {
		stats := c.Stats
		out.Stats = &stats
	}
	return out
}

func entries(c *model.Cashbook, book access.Book, userID string) []Entry {
	visible := c.Visible(userID, !book.CanViewOtherEntries())
	out := make([]Entry, 0, len(visible))
	for _, tx := range visible {
		e := Entry{Transaction: tx}
		if book.CanViewBalance() {
			balance := tx.Balance
			e.Balance = &balance
		}
		out = append(out, e)
	}
	return out
}

// List returns the cashbooks of a business the caller can open.
func (s *cashbookService) List(ctx context.Context, id Identity, businessID string) ([]CashbookSummary, error) {
	doc, _, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	b, _, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}

	out := []CashbookSummary{}
	for _, c := range doc.CashbooksOf(businessID) {
		book := access.ResolveBook(b, c, id.UserID)
		if !book.CanView() {
			continue
		}
		out = append(out, summarize(c, book, id.UserID))
	}
	return out, nil
}

// Create adds an empty cashbook with the caller as its ADMIN.
func (s *cashbookService) Create(ctx context.Context, id Identity, businessID string, req *CashbookRequest) (*CashbookSummary, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var out CashbookSummary
	l, err := s.updateBusiness(ctx, id, businessID, func(doc *model.Workspace) error {
		b, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanCreateCashbook(role) {
			return forbidden("only owners and partners can create cashbooks")
		}

		c := model.Cashbook{
			ID:           model.NewID("cb"),
			BusinessID:   businessID,
			Name:         req.Name,
			Transactions: []model.Transaction{},
			Stats:        model.Stats{TotalIn: decimal.Zero, TotalOut: decimal.Zero, NetBalance: decimal.Zero},
		}
		c.SetBookMember(b.Member(id.UserID).User, model.BookRoleAdmin, nil)
		c.LastUpdated = s.now()
		doc.AddCashbook(c)

		created := doc.Cashbook(c.ID)
		out = summarize(created, access.ResolveBook(b, created, id.UserID), id.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "cashbook_created", BusinessID: businessID, CashbookID: out.ID, Data: out})
	return &out, nil
}

func (s *cashbookService) Get(ctx context.Context, id Identity, cashbookID string) (*CashbookDetail, error) {
	doc, _, err := s.cashbookLedger(ctx, id, cashbookID)
	if err != nil {
		return nil, err
	}
	c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
	if err != nil {
		return nil, err
	}
	return &CashbookDetail{
		CashbookSummary: summarize(c, book, id.UserID),
		BookMembers:     c.BookMembers,
		Transactions:    entries(c, book, id.UserID),
	}, nil
}

func (s *cashbookService) Rename(ctx context.Context, id Identity, cashbookID string, req *CashbookRequest) (*CashbookSummary, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var out CashbookSummary
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanManage() {
			return forbidden("only book admins can rename the cashbook")
		}
		c.Name = req.Name
		c.LastUpdated = s.now()
		out = summarize(c, book, id.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "cashbook_updated", BusinessID: out.BusinessID, CashbookID: out.ID, Data: out})
	return &out, nil
}

func (s *cashbookService) Delete(ctx context.Context, id Identity, cashbookID string) error {
	var businessID string
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanManage() {
			return forbidden("only book admins can delete the cashbook")
		}
		businessID = c.BusinessID
		doc.RemoveCashbook(cashbookID)
		return nil
	})
	if err != nil {
		return err
	}

	s.publishLedger(id, l, ws.Event{Action: "cashbook_deleted", BusinessID: businessID, CashbookID: cashbookID})
	return nil
}

// SetMember gives a business member an explicit role in the cashbook.
// Operators without permissions get the default flags.
func (s *cashbookService) SetMember(ctx context.Context, id Identity, cashbookID, userID string, req *BookMemberRequest) (*model.BookMember, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		out        model.BookMember
		businessID string
	)
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, b, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanManage() {
			return forbidden("only book admins can manage book members")
		}
		m := b.Member(userID)
		if m == nil {
			return ErrMemberNotFound
		}
		if m.Role == model.RoleOwner {
			return ErrOwnerImmutable
		}
		c.SetBookMember(m.User, req.BookRole, req.Permissions)
		c.LastUpdated = s.now()
		out = *c.BookMember(userID)
		businessID = c.BusinessID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "book_member_updated", BusinessID: businessID, CashbookID: cashbookID, Data: out})
	return &out, nil
}

func (s *cashbookService) RemoveMember(ctx context.Context, id Identity, cashbookID, userID string) error {
	var businessID string
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanManage() {
			return forbidden("only book admins can manage book members")
		}
		if !c.RemoveBookMember(userID) {
			return ErrMemberNotFound
		}
		businessID = c.BusinessID
		return nil
	})
	if err != nil {
		return err
	}

	s.publishLedger(id, l, ws.Event{Action: "book_member_removed", BusinessID: businessID, CashbookID: cashbookID, Data: map[string]string{"userId": userID}})
	return nil
}

// Recompute rebuilds stats and running balances from the entries.
func (s *cashbookService) Recompute(ctx context.Context, id Identity, cashbookID string) (*model.Stats, error) {
	var (
		stats      model.Stats
		repaired   bool
		businessID string
	)
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanManage() {
			return forbidden("only book admins can recompute balances")
		}
		repaired = !c.Consistent()
		c.Recompute()
		stats = c.Stats
		businessID = c.BusinessID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if repaired {
		s.log.Info("cashbook balances repaired", "cashbook_id", cashbookID)
	}
	s.publishLedger(id, l, ws.Event{Action: "cashbook_recomputed", BusinessID: businessID, CashbookID: cashbookID, Data: stats})
	return &stats, nil
}
