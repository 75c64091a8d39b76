package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-cashbook-ws/internal/access"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DashboardService derives reports from cashbook entries.
type DashboardService interface {
	Stats(ctx context.Context, id Identity, cashbookID string) (*model.Stats, error)
	CashFlow(ctx context.Context, id Identity, cashbookID string, days int) ([]CashFlowPoint, error)
	Summary(ctx context.Context, id Identity, businessID, rangeKey string) (*BusinessSummaryReport, error)
	Export(ctx context.Context, id Identity, cashbookID string) (*Export, error)
}

// CashFlowPoint is the money in and out of one calendar day.
type CashFlowPoint struct {
	Date string          `json:"date"`
	In   decimal.Decimal `json:"in"`
	Out  decimal.Decimal `json:"out"`
}

type CashbookTotals struct {
	CashbookID string          `json:"cashbookId"`
	Name       string          `json:"name"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
}

type BusinessSummaryReport struct {
	Range     string           `json:"range"`
	From      time.Time        `json:"from"`
	To        time.Time        `json:"to"`
	Income    decimal.Decimal  `json:"income"`
	Expense   decimal.Decimal  `json:"expense"`
	Net       decimal.Decimal  `json:"net"`
	Cashbooks []CashbookTotals `json:"cashbooks"`
}

type Export struct {
	FileName string
	Data     []byte
}

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dashboardService struct {
	workspaces
}

func NewDashboardService(repo repository.WorkspaceRepository, log *slog.Logger) DashboardService {
	return &dashboardService{workspaces: newWorkspaces(repo, nil, log)}
}

// RangeStart maps a range key (7d, 1m, 3m, 6m, 12m) to its start. Unknown
// keys fall back to seven days.
func RangeStart(now time.Time, key string) (time.Time, string) {
	switch key {
	case "1m":
		return now.AddDate(0, -1, 0), key
	case "3m":
		return now.AddDate(0, -3, 0), key
	case "6m":
		return now.AddDate(0, -6, 0), key
	case "12m":
		return now.AddDate(0, -12, 0), key
	default:
		return now.AddDate(0, 0, -7), "7d"
	}
}

func (s *dashboardService) balanceBook(ctx context.Context, id Identity, cashbookID string) (*model.Cashbook, access.Book, error) {
	doc, _, err := s.cashbookLedger(ctx, id, cashbookID)
	if err != nil {
		return nil, access.Book{}, err
	}
	c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
	if err != nil {
		return nil, book, err
	}
	if !book.CanViewBalance() {
		return nil, book, forbidden("you cannot view the balance of this cashbook")
	}
	return c, book, nil
}

func (s *dashboardService) Stats(ctx context.Context, id Identity, cashbookID string) (*model.Stats, error) {
	c, _, err := s.balanceBook(ctx, id, cashbookID)
	if err != nil {
		return nil, err
	}
	stats := c.Stats
	return &stats, nil
}

// CashFlow returns one point per day for the last days days, today included.
func (s *dashboardService) CashFlow(ctx context.Context, id Identity, cashbookID string, days int) ([]CashFlowPoint, error) {
	if days <= 0 {
		days = 7
	}
	c, book, err := s.balanceBook(ctx, id, cashbookID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	points := make([]CashFlowPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-days+1).Format(dateLayout)
		points[i] = CashFlowPoint{Date: day, In: decimal.Zero, Out: decimal.Zero}
		index[day] = i
	}

	for _, tx := range c.Visible(id.UserID, !book.CanViewOtherEntries()) {
		i, ok := index[tx.Date.Format(dateLayout)]
		if !ok {
			continue
		}
		if tx.Type == model.TxIn {
			points[i].In = points[i].In.Add(tx.Amount)
		} else {
			points[i].Out = points[i].Out.Add(tx.Amount)
		}
	}
	return points, nil
}

// Summary totals income and expense across the business cashbooks whose
// balance the caller may see.
func (s *dashboardService) Summary(ctx context.Context, id Identity, businessID, rangeKey string) (*BusinessSummaryReport, error) {
	doc, _, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	b, _, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, key := RangeStart(now, rangeKey)
	from, to := start.Format(dateLayout), now.Format(dateLayout)

	report := &BusinessSummaryReport{
		Range:     key,
		From:      start,
		To:        now,
		Income:    decimal.Zero,
		Expense:   decimal.Zero,
		Cashbooks: []CashbookTotals{},
	}
	for _, c := range doc.CashbooksOf(businessID) {
		book := access.ResolveBook(b, c, id.UserID)
		if !book.CanViewBalance() {
			continue
		}
		totals := CashbookTotals{CashbookID: c.ID, Name: c.Name, Income: decimal.Zero, Expense: decimal.Zero}
		for _, tx := range c.Visible(id.UserID, !book.CanViewOtherEntries()) {
			day := tx.Date.Format(dateLayout)
			if day < from || day > to {
				continue
			}
			if tx.Type == model.TxIn {
				totals.Income = totals.Income.Add(tx.Amount)
			} else {
				totals.Expense = totals.Expense.Add(tx.Amount)
			}
		}
		report.Income = report.Income.Add(totals.Income)
		report.Expense = report.Expense.Add(totals.Expense)
		report.Cashbooks = append(report.Cashbooks, totals)
	}
	report.Net = report.Income.Sub(report.Expense)
	return report, nil
}

// Export writes the visible entries as an Excel day book, oldest first.
func (s *dashboardService) Export(ctx context.Context, id Identity, cashbookID string) (*Export, error) {
	doc, _, err := s.cashbookLedger(ctx, id, cashbookID)
	if err != nil {
		return nil, err
	}
	c, _, book, err := bookAccess(doc, cashbookID, id.UserID)
	if err != nil {
		return nil, err
	}

	rows := append([]model.Transaction(nil), c.Visible(id.UserID, !book.CanViewOtherEntries())...)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Day Book"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []interface{}{"Date", "Time", "Remark", "Category", "Payment Mode", "Contact", "Cash In", "Cash Out"}
	if book.CanViewBalance() {
		headers = append(headers, "Balance")
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, tx := range rows {
		var in, out interface{}
		if tx.Type == model.TxIn {
			in = tx.Amount.InexactFloat64()
		} else {
			out = tx.Amount.InexactFloat64()
		}
		row := []interface{}{
			tx.Date.Format(dateLayout), tx.Time, tx.Remark, tx.Category,
			string(tx.PaymentMode), tx.Contact, in, out,
		}
		if book.CanViewBalance() {
			row = append(row, tx.Balance.InexactFloat64())
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	f.SetColWidth(sheet, "A", "B", 12)
	f.SetColWidth(sheet, "C", "C", 30)
	f.SetColWidth(sheet, "D", "F", 15)
	f.SetColWidth(sheet, "G", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	name := strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, c.Name)
	return &Export{
		FileName: fmt.Sprintf("%s_%s.xlsx", name, s.now().Format("20060102")),
		Data:     buf.Bytes(),
	}, nil
}
