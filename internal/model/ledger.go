package model

import (
	"errors"
	"time"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// AddTransaction records tx as the newest entry and updates the stats.
// The stored running balance is the net balance after tx.
func (c *Cashbook) AddTransaction(tx Transaction) Transaction {
	switch tx.Type {
	case TxIn:
		c.Stats.TotalIn = c.Stats.TotalIn.Add(tx.Amount)
	case TxOut:
		c.Stats.TotalOut = c.Stats.TotalOut.Add(tx.Amount)
	}
	c.Stats.NetBalance = c.Stats.NetBalance.Add(tx.Signed())
	tx.Balance = c.Stats.NetBalance

	c.Transactions = append([]Transaction{tx}, c.Transactions...)
	c.LastUpdated = time.Now()
	return tx
}

// DeleteTransaction removes the entry and reverses its effect on the stats.
// Entries recorded after it have their running balance shifted so that every
// stored balance still matches insertion order.
func (c *Cashbook) DeleteTransaction(id string) (Transaction, error) {
	idx := -1
	for i := range c.Transactions {
		if c.Transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Transaction{}, ErrTransactionNotFound
	}

	removed := c.Transactions[idx]
	signed := removed.Signed()

	switch removed.Type {
	case TxIn:
		c.Stats.TotalIn = c.Stats.TotalIn.Sub(removed.Amount)
	case TxOut:
		c.Stats.TotalOut = c.Stats.TotalOut.Sub(removed.Amount)
	}
	c.Stats.NetBalance = c.Stats.NetBalance.Sub(signed)

	// newest first: everything before idx was recorded later
	for i := 0; i < idx; i++ {
		c.Transactions[i].Balance = c.Transactions[i].Balance.Sub(signed)
	}

	c.Transactions = append(c.Transactions[:idx], c.Transactions[idx+1:]...)
	c.LastUpdated = time.Now()
	return removed, nil
}

// Recompute rebuilds the stats and every running balance from the entries.
func (c *Cashbook) Recompute() {
	var stats Stats
	for i := len(c.Transactions) - 1; i >= 0; i-- {
		tx := &c.Transactions[i]
		switch tx.Type {
		case TxIn:
			stats.TotalIn = stats.TotalIn.Add(tx.Amount)
		case TxOut:
			stats.TotalOut = stats.TotalOut.Add(tx.Amount)
		}
		stats.NetBalance = stats.NetBalance.Add(tx.Signed())
		tx.Balance = stats.NetBalance
	}
	c.Stats = stats
	c.LastUpdated = time.Now()
}

// Consistent reports whether the cached stats agree with the entries.
func (c *Cashbook) Consistent() bool {
	check := Cashbook{Transactions: append([]Transaction(nil), c.Transactions...)}
	check.Recompute()
	if !check.Stats.TotalIn.Equal(c.Stats.TotalIn) ||
		!check.Stats.TotalOut.Equal(c.Stats.TotalOut) ||
		!check.Stats.NetBalance.Equal(c.Stats.NetBalance) {
		return false
	}
	for i := range c.Transactions {
		if !check.Transactions[i].Balance.Equal(c.Transactions[i].Balance) {
			return false
		}
	}
	return true
}

// Visible returns the entries a reader may see; ownOnly keeps only those
// created by userID.
func (c *Cashbook) Visible(userID string, ownOnly bool) []Transaction {
	if !ownOnly {
		return c.Transactions
	}
	out := make([]Transaction, 0, len(c.Transactions))
	for _, tx := range c.Transactions {
		if tx.CreatedBy == userID {
			out = append(out, tx)
		}
	}
	return out
}
