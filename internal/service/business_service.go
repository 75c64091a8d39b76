package service

import (
	"context"
	"fmt"
	"log/slog"

	"go-cashbook-ws/internal/access"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"
)

type BusinessService interface {
	List(ctx context.Context, id Identity) (*BusinessList, error)
	Create(ctx context.Context, id Identity, req *BusinessRequest) (*model.Business, error)
	Get(ctx context.Context, id Identity, businessID string) (*BusinessDetail, error)
	Update(ctx context.Context, id Identity, businessID string, req *BusinessRequest) (*model.Business, error)
	Delete(ctx context.Context, id Identity, businessID string) error
	Activate(ctx context.Context, id Identity, businessID string) error
	Settings(ctx context.Context, id Identity, businessID string) (*Settings, error)
	Members(ctx context.Context, id Identity, businessID string) ([]model.Member, error)
	ChangeMemberRole(ctx context.Context, id Identity, businessID, userID string, req *ChangeRoleRequest) (*model.Member, error)
	RemoveMember(ctx context.Context, id Identity, businessID, userID string) error
}

type BusinessRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Category  string `json:"category" validate:"max=100"`
	Industry  string `json:"industry" validate:"max=100"`
	Type      string `json:"type" validate:"max=100"`
	StaffSize string `json:"staffSize" validate:"max=20"`
	Address   string `json:"address" validate:"max=500"`
}

type ChangeRoleRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=PARTNER STAFF"`
}

type BusinessSummary struct {
	model.Business
	Role   model.Role `json:"role"`
	Active bool       `json:"active"`
}

type BusinessList struct {
	Businesses       []BusinessSummary `json:"businesses"`
	ActiveBusinessID string            `json:"activeBusinessId"`
}

type BusinessDetail struct {
	model.Business
	Role     model.Role            `json:"role"`
	Settings []access.SettingsPage `json:"settings"`
}

type Settings struct {
	Role  model.Role            `json:"role"`
	Pages []access.SettingsPage `json:"pages"`
}

type businessService struct {
	workspaces
}

func NewBusinessService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) BusinessService {
	return &businessService{workspaces: newWorkspaces(repo, hub, log)}
}

func (s *businessService) List(ctx context.Context, id Identity) (*BusinessList, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &BusinessList{Businesses: []BusinessSummary{}, ActiveBusinessID: doc.ActiveBusinessID}
	for _, b := range doc.Businesses {
		role, ok := access.BusinessRole(&b, id.UserID)
		if !ok {
			continue
		}
		out.Businesses = append(out.Businesses, BusinessSummary{
			Business: b,
			Role:     role,
			Active:   b.ID == doc.ActiveBusinessID,
		})
	}
	return out, nil
}

// Create adds a business owned by the caller and makes it active.
func (s *businessService) Create(ctx context.Context, id Identity, req *BusinessRequest) (*model.Business, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var created model.Business
	_, err := s.update(ctx, id, func(doc *model.Workspace) error {
		now := s.now()
		created = model.Business{
			ID:        model.NewID("b"),
			Name:      req.Name,
			Category:  req.Category,
			Industry:  req.Industry,
			Type:      req.Type,
			StaffSize: req.StaffSize,
			Address:   req.Address,
			Members: []model.Member{
				{User: doc.User, Role: model.RoleOwner, Status: model.MemberActive, JoinedAt: now},
			},
			CreatedAt: now,
		}
		doc.Businesses = append(doc.Businesses, created)
		doc.ActiveBusinessID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(id.UserID, ws.Event{Action: "business_created", BusinessID: created.ID, Data: created})
	return &created, nil
}

func (s *businessService) Get(ctx context.Context, id Identity, businessID string) (*BusinessDetail, error) {
	doc, _, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	b, role, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}
	return &BusinessDetail{Business: *b, Role: role, Settings: access.SettingsPages(role)}, nil
}

func (s *businessService) Update(ctx context.Context, id Identity, businessID string, req *BusinessRequest) (*model.Business, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated model.Business
	l, err := s.updateBusiness(ctx, id, businessID, func(doc *model.Workspace) error {
		b, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanEditBusiness(role) {
			return forbidden("only owners and partners can edit the business")
		}
		b.Name = req.Name
		b.Category = req.Category
		b.Industry = req.Industry
		b.Type = req.Type
		b.StaffSize = req.StaffSize
		b.Address = req.Address
		updated = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "business_updated", BusinessID: businessID, Data: updated})
	return &updated, nil
}

// Delete removes the business and all of its cashbooks.
func (s *businessService) Delete(ctx context.Context, id Identity, businessID string) error {
	_, err := s.update(ctx, id, func(doc *model.Workspace) error {
		_, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanDeleteBusiness(role) {
			return forbidden("only the owner can delete the business")
		}
		doc.RemoveBusiness(businessID)
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(id.UserID, ws.Event{Action: "business_deleted", BusinessID: businessID})
	return nil
}

func (s *businessService) Activate(ctx context.Context, id Identity, businessID string) error {
	_, err := s.update(ctx, id, func(doc *model.Workspace) error {
		if _, _, err := memberBusiness(doc, businessID, id.UserID); err != nil {
			return err
		}
		doc.ActiveBusinessID = businessID
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(id.UserID, ws.Event{Action: "business_activated", BusinessID: businessID})
	return nil
}

func (s *businessService) Settings(ctx context.Context, id Identity, businessID string) (*Settings, error) {
	doc, _, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	_, role, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}
	return &Settings{Role: role, Pages: access.SettingsPages(role)}, nil
}

func (s *businessService) Members(ctx context.Context, id Identity, businessID string) ([]model.Member, error) {
	doc, _, err := s.businessLedger(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	b, _, err := memberBusiness(doc, businessID, id.UserID)
	if err != nil {
		return nil, err
	}
	return b.Members, nil
}

func (s *businessService) ChangeMemberRole(ctx context.Context, id Identity, businessID, userID string, req *ChangeRoleRequest) (*model.Member, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated model.Member
	l, err := s.updateBusiness(ctx, id, businessID, func(doc *model.Workspace) error {
		b, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanManageTeam(role) {
			return forbidden("only owners and partners can manage the team")
		}
		m := b.Member(userID)
		if m == nil {
			return ErrMemberNotFound
		}
		if m.Role == model.RoleOwner {
			return ErrOwnerImmutable
		}
		m.Role = req.Role
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLedger(id, l, ws.Event{Action: "member_updated", BusinessID: businessID, Data: updated})
	return &updated, nil
}

// RemoveMember drops the member from the business and from every cashbook of it.
func (s *businessService) RemoveMember(ctx context.Context, id Identity, businessID, userID string) error {
	l, err := s.updateBusiness(ctx, id, businessID, func(doc *model.Workspace) error {
		b, role, err := memberBusiness(doc, businessID, id.UserID)
		if err != nil {
			return err
		}
		if !access.CanManageTeam(role) {
			return forbidden("only owners and partners can manage the team")
		}
		m := b.Member(userID)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
		}
		if m.Role == model.RoleOwner {
			return ErrOwnerImmutable
		}
		b.RemoveMember(userID)
		for _, c := range doc.CashbooksOf(businessID) {
			c.RemoveBookMember(userID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishLedger(id, l, ws.Event{Action: "member_removed", BusinessID: businessID, Data: map[string]string{"userId": userID}})
	return nil
}
