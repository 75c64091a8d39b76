package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookMember is a user's role inside one cashbook.
type BookMember struct {
	User
	BookRole    BookRole             `json:"bookRole"`
	Permissions *OperatorPermissions `json:"permissions,omitempty"`
}

// Stats are the cached aggregates of a cashbook.
type Stats struct {
	TotalIn    decimal.Decimal `json:"totalIn"`
	TotalOut   decimal.Decimal `json:"totalOut"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// Cashbook is a named ledger scoped to one business.
// Transactions are kept newest first.
type Cashbook struct {
	ID           string        `json:"id"`
	BusinessID   string        `json:"businessId"`
	Name         string        `json:"name"`
	BookMembers  []BookMember  `json:"bookMembers"`
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}

// BookMember returns the explicit book membership of userID, or nil.
func (c *Cashbook) BookMember(userID string) *BookMember {
	for i := range c.BookMembers {
		if c.BookMembers[i].ID == userID {
			return &c.BookMembers[i]
		}
	}
	return nil
}

// SetBookMember inserts or replaces the membership of u. Operators without
// explicit permissions receive the defaults; other roles carry none.
func (c *Cashbook) SetBookMember(u User, role BookRole, perms *OperatorPermissions) {
	if role == BookRoleOperator {
		if perms == nil {
			p := DefaultOperatorPermissions()
			perms = &p
		}
	} else {
		perms = nil
	}

	if m := c.BookMember(u.ID); m != nil {
		m.BookRole = role
		m.Permissions = perms
	} else {
		c.BookMembers = append(c.BookMembers, BookMember{User: u, BookRole: role, Permissions: perms})
	}
	c.LastUpdated = time.Now()
}

// RemoveBookMember drops userID from the book and reports whether it was present.
func (c *Cashbook) RemoveBookMember(userID string) bool {
	for i := range c.BookMembers {
		if c.BookMembers[i].ID == userID {
			c.BookMembers = append(c.BookMembers[:i], c.BookMembers[i+1:]...)
			c.LastUpdated = time.Now()
			return true
		}
	}
	return false
}
