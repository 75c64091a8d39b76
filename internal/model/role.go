package model

// Role is a business-level role.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RolePartner Role = "PARTNER"
	RoleStaff   Role = "STAFF"
)

// Valid reports whether r is one of the known business roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RolePartner, RoleStaff:
		return true
	}
	return false
}

// BookRole is a per-cashbook role, independent from the business role.
type BookRole string

const (
	BookRoleAdmin    BookRole = "ADMIN"
	BookRoleOperator BookRole = "OPERATOR"
	BookRoleViewer   BookRole = "VIEWER"

	// BookRoleNone is what a user without access to a book resolves to.
	BookRoleNone BookRole = "NOT_MEMBER"
)

// Valid reports whether r can be assigned to a book member.
func (r BookRole) Valid() bool {
	switch r {
	case BookRoleAdmin, BookRoleOperator, BookRoleViewer:
		return true
	}
	return false
}

// OperatorPermissions are the fine-grained flags an OPERATOR carries.
type OperatorPermissions struct {
	CanEditEntries         bool `json:"canEditEntries"`
	CanAddBackdatedEntries bool `json:"canAddBackdatedEntries"`
	CanViewNetBalance      bool `json:"canViewNetBalance"`
	CanViewOtherEntries    bool `json:"canViewOtherEntries"`
}

// DefaultOperatorPermissions is applied when an operator is assigned without explicit flags.
func DefaultOperatorPermissions() OperatorPermissions {
	return OperatorPermissions{
		CanEditEntries:         true,
		CanAddBackdatedEntries: false,
		CanViewNetBalance:      true,
		CanViewOtherEntries:    true,
	}
}
