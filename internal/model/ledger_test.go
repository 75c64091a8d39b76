package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func entry(id string, typ TransactionType, amount int64) Transaction {
	return Transaction{
		ID:          id,
		Amount:      dec(amount),
		Type:        typ,
		Category:    "Other",
		PaymentMode: PaymentCash,
		Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Time:        "10:00",
		CreatedBy:   "u1",
	}
}

func assertStats(t *testing.T, c *Cashbook, in, out, net int64) {
	t.Helper()
	assert.True(t, c.Stats.TotalIn.Equal(dec(in)), "totalIn = %s, want %d", c.Stats.TotalIn, in)
	assert.True(t, c.Stats.TotalOut.Equal(dec(out)), "totalOut = %s, want %d", c.Stats.TotalOut, out)
	assert.True(t, c.Stats.NetBalance.Equal(dec(net)), "netBalance = %s, want %d", c.Stats.NetBalance, net)
}

func TestAddTransaction_In(t *testing.T) {
	c := &Cashbook{}
	tx := c.AddTransaction(entry("t1", TxIn, 500))

	assertStats(t, c, 500, 0, 500)
	assert.True(t, tx.Balance.Equal(dec(500)))
	require.Len(t, c.Transactions, 1)
}

func TestAddTransaction_Out(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 500))
	tx := c.AddTransaction(entry("t2", TxOut, 200))

	assertStats(t, c, 500, 200, 300)
	assert.True(t, tx.Balance.Equal(dec(300)))
}

func TestAddTransaction_NewestFirst(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 1))
	c.AddTransaction(entry("t2", TxIn, 2))
	c.AddTransaction(entry("t3", TxIn, 3))

	ids := []string{c.Transactions[0].ID, c.Transactions[1].ID, c.Transactions[2].ID}
	assert.Equal(t, []string{"t3", "t2", "t1"}, ids)
}

func TestDeleteTransaction_ReversesStats(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 1000))
	c.AddTransaction(entry("t2", TxOut, 250))

	_, err := c.DeleteTransaction("t2")
	require.NoError(t, err)
	assertStats(t, c, 1000, 0, 1000)

	_, err = c.DeleteTransaction("t1")
	require.NoError(t, err)
	assertStats(t, c, 0, 0, 0)
	assert.Empty(t, c.Transactions)
}

func TestDeleteTransaction_OutOfOrderKeepsBalancesConsistent(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 100))
	c.AddTransaction(entry("t2", TxOut, 30))
	c.AddTransaction(entry("t3", TxIn, 50))

	_, err := c.DeleteTransaction("t1")
	require.NoError(t, err)

	assertStats(t, c, 50, 30, 20)
	require.Len(t, c.Transactions, 2)
	assert.True(t, c.Transactions[0].Balance.Equal(dec(20)), "t3 balance = %s", c.Transactions[0].Balance)
	assert.True(t, c.Transactions[1].Balance.Equal(dec(-30)), "t2 balance = %s", c.Transactions[1].Balance)
	assert.True(t, c.Consistent())
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 100))

	_, err := c.DeleteTransaction("missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assertStats(t, c, 100, 0, 100)
}

func TestRecompute_RepairsDrift(t *testing.T) {
	c := &Cashbook{}
	c.AddTransaction(entry("t1", TxIn, 100))
	c.AddTransaction(entry("t2", TxOut, 40))

	c.Stats.NetBalance = dec(999)
	c.Transactions[0].Balance = dec(1)
	require.False(t, c.Consistent())

	c.Recompute()
	assertStats(t, c, 100, 40, 60)
	assert.True(t, c.Transactions[0].Balance.Equal(dec(60)))
	assert.True(t, c.Transactions[1].Balance.Equal(dec(100)))
	assert.True(t, c.Consistent())
}

func TestVisible_OwnOnly(t *testing.T) {
	c := &Cashbook{}
	mine := entry("t1", TxIn, 10)
	theirs := entry("t2", TxIn, 20)
	theirs.CreatedBy = "u2"
	c.AddTransaction(mine)
	c.AddTransaction(theirs)

	assert.Len(t, c.Visible("u1", false), 2)
	own := c.Visible("u1", true)
	require.Len(t, own, 1)
	assert.Equal(t, "t1", own[0].ID)
}

func TestSetBookMember_OperatorDefaults(t *testing.T) {
	c := &Cashbook{}
	u := User{ID: "u2", Name: "John", Email: "john@example.com"}

	c.SetBookMember(u, BookRoleOperator, nil)
	m := c.BookMember("u2")
	require.NotNil(t, m)
	require.NotNil(t, m.Permissions)
	assert.Equal(t, DefaultOperatorPermissions(), *m.Permissions)

	c.SetBookMember(u, BookRoleViewer, &OperatorPermissions{CanEditEntries: true})
	assert.Nil(t, c.BookMember("u2").Permissions, "viewers carry no operator flags")
	assert.Len(t, c.BookMembers, 1)
}

func TestWorkspace_RemoveBusinessDropsCashbooks(t *testing.T) {
	w := NewWorkspace(User{ID: "u1", Name: "Abduselam", Email: "a@example.com"})
	first := w.Businesses[0].ID
	w.Businesses = append(w.Businesses, Business{ID: "b2", Name: "Second"})
	w.AddCashbook(Cashbook{ID: "cb1", BusinessID: first})
	w.AddCashbook(Cashbook{ID: "cb2", BusinessID: "b2"})

	require.True(t, w.RemoveBusiness(first))
	assert.Nil(t, w.Cashbook("cb1"))
	assert.NotNil(t, w.Cashbook("cb2"))
	assert.Equal(t, "b2", w.ActiveBusinessID)
}
