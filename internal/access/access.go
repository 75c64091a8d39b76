// Package access resolves what a user may do in a business and in a cashbook.
//
// Business roles gate the settings pages and team management. Book roles gate
// ledger actions; an OPERATOR is further narrowed by its permission flags.
// Business OWNERs and PARTNERs who are not explicit book members act as the
// book's ADMIN.
package access

import "go-cashbook-ws/internal/model"

type SettingsPage string

const (
	PageProfile  SettingsPage = "profile"
	PageTeam     SettingsPage = "team"
	PageBusiness SettingsPage = "business"
)

// BusinessRole returns the caller's role in b and whether they belong to it.
// Invited members are not resolved until they accept.
func BusinessRole(b *model.Business, userID string) (model.Role, bool) {
	if b == nil {
		return "", false
	}
	m := b.Member(userID)
	if m == nil || m.Status != model.MemberActive {
		return "", false
	}
	return m.Role, true
}

// SettingsPages lists the settings pages a business role can open.
func SettingsPages(role model.Role) []SettingsPage {
	if role == model.RoleStaff {
		return []SettingsPage{PageProfile}
	}
	return []SettingsPage{PageProfile, PageTeam, PageBusiness}
}

func isManager(role model.Role) bool {
	return role == model.RoleOwner || role == model.RolePartner
}

func CanManageTeam(role model.Role) bool     { return isManager(role) }
func CanEditBusiness(role model.Role) bool   { return isManager(role) }
func CanCreateCashbook(role model.Role) bool { return isManager(role) }
func CanDeleteBusiness(role model.Role) bool { return role == model.RoleOwner }

// Book is the resolved access of one user to one cashbook.
type Book struct {
	Role        model.BookRole             `json:"role"`
	Permissions *model.OperatorPermissions `json:"permissions,omitempty"`
}

// ResolveBook computes the effective book role of userID in c, which belongs to b.
func ResolveBook(b *model.Business, c *model.Cashbook, userID string) Book {
	if c == nil {
		return Book{Role: model.BookRoleNone}
	}
	if m := c.BookMember(userID); m != nil {
		return Book{Role: m.BookRole, Permissions: m.Permissions}
	}
	if role, ok := BusinessRole(b, userID); ok && isManager(role) {
		return Book{Role: model.BookRoleAdmin}
	}
	return Book{Role: model.BookRoleNone}
}

func (a Book) flag(f func(model.OperatorPermissions) bool) bool {
	return a.Permissions != nil && f(*a.Permissions)
}

func (a Book) CanView() bool {
	return a.Role.Valid()
}

func (a Book) CanAdd() bool {
	return a.Role == model.BookRoleAdmin || a.Role == model.BookRoleOperator
}

func (a Book) CanDelete() bool {
	switch a.Role {
	case model.BookRoleAdmin:
		return true
	case model.BookRoleOperator:
		return a.flag(func(p model.OperatorPermissions) bool { return p.CanEditEntries })
	}
	return false
}

func (a Book) CanViewBalance() bool {
	switch a.Role {
	case model.BookRoleAdmin, model.BookRoleViewer:
		return true
	case model.BookRoleOperator:
		return a.flag(func(p model.OperatorPermissions) bool { return p.CanViewNetBalance })
	}
	return false
}

func (a Book) CanAddBackdated() bool {
	switch a.Role {
	case model.BookRoleAdmin:
		return true
	case model.BookRoleOperator:
		return a.flag(func(p model.OperatorPermissions) bool { return p.CanAddBackdatedEntries })
	}
	return false
}

func (a Book) CanViewOtherEntries() bool {
	switch a.Role {
	case model.BookRoleAdmin, model.BookRoleViewer:
		return true
	case model.BookRoleOperator:
		return a.flag(func(p model.OperatorPermissions) bool { return p.CanViewOtherEntries })
	}
	return false
}

// CanManage covers rename, delete, member changes and balance repair.
func (a Book) CanManage() bool {
	return a.Role == model.BookRoleAdmin
}

// Capabilities is the flattened view returned to clients.
type Capabilities struct {
	Role                model.BookRole             `json:"userRole"`
	Permissions         *model.OperatorPermissions `json:"userPermissions,omitempty"`
	CanView             bool                       `json:"canView"`
	CanAdd              bool                       `json:"canAdd"`
	CanDelete           bool                       `json:"canDelete"`
	CanViewBalance      bool                       `json:"canViewBalance"`
	CanAddBackdated     bool                       `json:"canAddBackdated"`
	CanViewOtherEntries bool                       `json:"canViewOtherEntries"`
	CanManage           bool                       `json:"canManage"`
}

func (a Book) Capabilities() Capabilities {
	return Capabilities{
		Role:                a.Role,
		Permissions:         a.Permissions,
		CanView:             a.CanView(),
		CanAdd:              a.CanAdd(),
		CanDelete:           a.CanDelete(),
		CanViewBalance:      a.CanViewBalance(),
		CanAddBackdated:     a.CanAddBackdated(),
		CanViewOtherEntries: a.CanViewOtherEntries(),
		CanManage:           a.CanManage(),
	}
}
