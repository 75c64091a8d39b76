package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

type PaymentMode string

const (
	PaymentCash   PaymentMode = "Cash"
	PaymentOnline PaymentMode = "Online"
	PaymentBank   PaymentMode = "Bank"
	PaymentUPI    PaymentMode = "UPI"
	PaymentCard   PaymentMode = "Card"
)

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Remark      string          `json:"remark,omitempty"`
	Category    string          `json:"category"`
	PaymentMode PaymentMode     `json:"paymentMode"`
	Date        time.Time       `json:"date"`
	Time        string          `json:"time"` // HH:MM
	Contact     string          `json:"contact,omitempty"`
	Attachments []string        `json:"attachments,omitempty"`
	CreatedBy   string          `json:"createdBy"`

	// Running balance of the book right after this entry was recorded
	Balance decimal.Decimal `json:"balance"`
}

// Signed returns the amount with the sign of its effect on the net balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TxOut {
		return t.Amount.Neg()
	}
	return t.Amount
}
