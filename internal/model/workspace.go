package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentName is the name of the per-user JSON document in the file store.
const DocumentName = "hisab_db.json"

// Workspace is everything one user persists: it is serialized as a single
// JSON document and written back whole.
type Workspace struct {
	User             User       `json:"user"`
	Businesses       []Business `json:"businesses"`
	Cashbooks        []Cashbook `json:"cashbooks"`
	ActiveBusinessID string     `json:"activeBusinessId,omitempty"`
	Version          int64      `json:"version"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewWorkspace builds the initial document for a first-time user: one
// business owned by u and no cashbooks.
func NewWorkspace(u User) *Workspace {
	now := time.Now()
	b := Business{
		ID:        NewID("b"),
		Name:      "My Business",
		Category:  "Other",
		Industry:  "other",
		Type:      "Other",
		StaffSize: "1-5",
		Members: []Member{
			{User: u, Role: RoleOwner, Status: MemberActive, JoinedAt: now},
		},
		CreatedAt: now,
	}
	return &Workspace{
		User:             u,
		Businesses:       []Business{b},
		Cashbooks:        []Cashbook{},
		ActiveBusinessID: b.ID,
		UpdatedAt:        now,
	}
}

// NewID returns a prefixed random identifier such as "cb_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (w *Workspace) Business(id string) *Business {
	for i := range w.Businesses {
		if w.Businesses[i].ID == id {
			return &w.Businesses[i]
		}
	}
	return nil
}

func (w *Workspace) Cashbook(id string) *Cashbook {
	for i := range w.Cashbooks {
		if w.Cashbooks[i].ID == id {
			return &w.Cashbooks[i]
		}
	}
	return nil
}

// CashbooksOf returns pointers to the cashbooks of one business.
func (w *Workspace) CashbooksOf(businessID string) []*Cashbook {
	var out []*Cashbook
	for i := range w.Cashbooks {
		if w.Cashbooks[i].BusinessID == businessID {
			out = append(out, &w.Cashbooks[i])
		}
	}
	return out
}

// AddCashbook prepends c, matching the newest-first listing.
func (w *Workspace) AddCashbook(c Cashbook) {
	w.Cashbooks = append([]Cashbook{c}, w.Cashbooks...)
}

func (w *Workspace) RemoveCashbook(id string) bool {
	for i := range w.Cashbooks {
		if w.Cashbooks[i].ID == id {
			w.Cashbooks = append(w.Cashbooks[:i], w.Cashbooks[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBusiness drops the business together with its cashbooks.
func (w *Workspace) RemoveBusiness(id string) bool {
	found := false
	for i := range w.Businesses {
		if w.Businesses[i].ID == id {
			w.Businesses = append(w.Businesses[:i], w.Businesses[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	kept := w.Cashbooks[:0]
	for _, c := range w.Cashbooks {
		if c.BusinessID != id {
			kept = append(kept, c)
		}
	}
	w.Cashbooks = kept

	if w.ActiveBusinessID == id {
		w.ActiveBusinessID = ""
		if len(w.Businesses) > 0 {
			w.ActiveBusinessID = w.Businesses[0].ID
		}
	}
	return true
}

// Touch bumps the document version after a mutation.
func (w *Workspace) Touch() {
	w.Version++
	w.UpdatedAt = time.Now()
}
