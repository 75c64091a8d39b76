package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type TransactionService interface {
	List(ctx context.Context, id Identity, cashbookID string, f TransactionFilter) ([]Entry, error)
	Add(ctx context.Context, id Identity, cashbookID string, req *TransactionRequest) (*Entry, error)
	Delete(ctx context.Context, id Identity, cashbookID, transactionID string) error
}

type TransactionRequest struct {
	Amount      decimal.Decimal       `json:"amount" validate:"gt=0"`
	Type        model.TransactionType `json:"type" validate:"required,oneof=IN OUT"`
	Category    string                `json:"category" validate:"required,max=100"`
	PaymentMode model.PaymentMode     `json:"paymentMode" validate:"required,oneof=Cash Online Bank UPI Card"`
	Date        string                `json:"date" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD, defaults to today
	Time        string                `json:"time" validate:"omitempty,clock"`               // HH:MM, defaults to now
	Remark      string                `json:"remark" validate:"max=500"`
	Contact     string                `json:"contact" validate:"max=100"`
	Attachments []string              `json:"attachments" validate:"max=10,dive,url"`
}

// TransactionFilter narrows a listing; zero values match everything.
// From and To are inclusive calendar days.
type TransactionFilter struct {
	Type        model.TransactionType
	Category    string
	PaymentMode model.PaymentMode
	From        time.Time
	To          time.Time
	Query       string
}

func (f TransactionFilter) match(tx model.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && !strings.EqualFold(tx.Category, f.Category) {
		return false
	}
	if f.PaymentMode != "" && !strings.EqualFold(string(tx.PaymentMode), string(f.PaymentMode)) {
		return false
	}
	day := tx.Date.Format(dateLayout)
	if !f.From.IsZero() && day < f.From.Format(dateLayout) {
		return false
	}
	if !f.To.IsZero() && day > f.To.Format(dateLayout) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(tx.Remark + "\n" + tx.Contact + "\n" + tx.Category)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

type transactionService struct {
	workspaces
}

func NewTransactionService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) TransactionService {
	return &transactionService{workspaces: newWorkspaces(repo, hub, log)}
}

// List returns the entries the caller may see, newest first.
func (s *transactionService) List(ctx context.Context, id Identity, cashbookID string, f TransactionFilter) ([]Entry, error) {
	doc, _, err := s.cashbookLedger(ctx, id, cashbookID)
	if err != nil {
		return nil, err
	}
	c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
	if err != nil {
		return nil, err
	}

	out := []Entry{}
	for _, e := range entries(c, book, id.UserID) {
		if f.match(e.Transaction) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Add records a new entry. Entries dated before today need the backdated
// permission.
func (s *transactionService) Add(ctx context.Context, id Identity, cashbookID string, req *TransactionRequest) (*Entry, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	today := now.Format(dateLayout)
	date := now
	if req.Date != "" {
		d, err := time.ParseInLocation(dateLayout, req.Date, now.Location())
		if err != nil {
			return nil, invalid("date must be YYYY-MM-DD")
		}
		date = d
	}
	clock := req.Time
	if clock == "" {
		clock = now.Format("15:04")
	}

	var (
		out        Entry
		businessID string
	)
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanAdd() {
			return forbidden("you cannot add entries to this cashbook")
		}
		if date.Format(dateLayout) < today && !book.CanAddBackdated() {
			return forbidden("you cannot add backdated entries")
		}

		tx := c.AddTransaction(model.Transaction{
			ID:          model.NewID("tx"),
			Amount:      req.Amount,
			Type:        req.Type,
			Remark:      req.Remark,
			Category:    req.Category,
			PaymentMode: req.PaymentMode,
			Date:        date,
			Time:        clock,
			Contact:     req.Contact,
			Attachments: req.Attachments,
			CreatedBy:   id.UserID,
		})
		c.LastUpdated = now

		out = Entry{Transaction: tx}
		if book.CanViewBalance() {
			balance := tx.Balance
			out.Balance = &balance
		}
		businessID = c.BusinessID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "transaction_added", BusinessID: businessID, CashbookID: cashbookID, Data: out})
	return &out, nil
}

func (s *transactionService) Delete(ctx context.Context, id Identity, cashbookID, transactionID string) error {
	var businessID string
	l, err := s.updateCashbook(ctx, id, cashbookID, func(doc *model.Workspace) error {
		c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
		if err != nil {
			return err
		}
		if !book.CanDelete() {
			return forbidden("you cannot delete entries in this cashbook")
		}
		if !book.CanViewOtherEntries() && !ownEntry(c, transactionID, id.UserID) {
			return ErrTransactionNotFound
		}
		if _, err := c.DeleteTransaction(transactionID); err != nil {
			return err
		}
		c.LastUpdated = s.now()
		businessID = c.BusinessID
		return nil
	})
	if err != nil {
		return err
	}

	s.publishLedger(id, l, ws.Event{Action: "transaction_deleted", BusinessID: businessID, CashbookID: cashbookID, Data: map[string]string{"id": transactionID}})
	return nil
}

// ownEntry hides entries of others from callers limited to their own.
func ownEntry(c *model.Cashbook, transactionID, userID string) bool {
	for _, tx := range c.Visible(userID, true) {
		if tx.ID == transactionID {
			return true
		}
	}
	return false
}
