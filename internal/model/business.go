package model

import "time"

type MemberStatus string

const (
	MemberActive  MemberStatus = "ACTIVE"
	MemberInvited MemberStatus = "INVITED"
)

// Member is a user's membership in a business.
type Member struct {
	User
	Role     Role         `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joinedAt"`
}

// Business is a tenant grouping cashbooks and a member roster.
type Business struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Industry  string    `json:"industry"`
	Type      string    `json:"type"`
	StaffSize string    `json:"staffSize"`
	Address   string    `json:"address,omitempty"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`

	// HostID is the user whose document holds the cashbooks and roster of a
	// business joined through an invitation. Empty means this document.
	HostID string `json:"hostId,omitempty"`
}

// HostedBy returns the host when the business lives in a document other
// than userID's.
func (b *Business) HostedBy(userID string) (string, bool) {
	if b.HostID == "" || b.HostID == userID {
		return "", false
	}
	return b.HostID, true
}

// Member returns the membership of userID, or nil.
func (b *Business) Member(userID string) *Member {
	for i := range b.Members {
		if b.Members[i].ID == userID {
			return &b.Members[i]
		}
	}
	return nil
}

// MemberByEmail finds a membership by email, used for invited members that
// have no user id yet.
func (b *Business) MemberByEmail(email string) *Member {
	for i := range b.Members {
		if b.Members[i].SameEmail(email) {
			return &b.Members[i]
		}
	}
	return nil
}

// Owner returns the first OWNER member, or nil.
func (b *Business) Owner() *Member {
	for i := range b.Members {
		if b.Members[i].Role == RoleOwner {
			return &b.Members[i]
		}
	}
	return nil
}

// RemoveMember drops userID from the roster and reports whether it was present.
func (b *Business) RemoveMember(userID string) bool {
	for i := range b.Members {
		if b.Members[i].ID == userID {
			b.Members = append(b.Members[:i], b.Members[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveMemberByEmail drops the membership held under email, typically a
// placeholder left by an invitation.
func (b *Business) RemoveMemberByEmail(email string) bool {
	for i := range b.Members {
		if b.Members[i].SameEmail(email) {
			b.Members = append(b.Members[:i], b.Members[i+1:]...)
			return true
		}
	}
	return false
}
