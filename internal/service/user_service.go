package service

import (
	"context"
	"log/slog"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"
)

type UserService interface {
	GetProfile(ctx context.Context, id Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, id Identity, req *UpdateProfileRequest) (*model.User, error)
}

type UpdateProfileRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Phone  string `json:"phone" validate:"omitempty,max=20"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

type userService struct {
	workspaces
}

func NewUserService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) UserService {
	return &userService{workspaces: newWorkspaces(repo, hub, log)}
}

func (s *userService) GetProfile(ctx context.Context, id Identity) (*model.User, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	u := doc.User
	return &u, nil
}

// UpdateProfile changes the caller's profile and every copy of it held in
// member rosters of the document.
func (s *userService) UpdateProfile(ctx context.Context, id Identity, req *UpdateProfileRequest) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated model.User
	_, err := s.update(ctx, id, func(doc *model.Workspace) error {
		doc.User.Name = req.Name
		doc.User.Phone = req.Phone
		doc.User.Avatar = req.Avatar
		updated = doc.User

		for i := range doc.Businesses {
			if m := doc.Businesses[i].Member(id.UserID); m != nil {
				m.User = merged(m.User, updated)
			}
		}
		for i := range doc.Cashbooks {
			if m := doc.Cashbooks[i].BookMember(id.UserID); m != nil {
				m.User = merged(m.User, updated)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(id.UserID, ws.Event{Action: "profile_updated", Data: updated})
	return &updated, nil
}

// merged keeps the roster entry's id and email.
func merged(entry, profile model.User) model.User {
	entry.Name = profile.Name
	entry.Phone = profile.Phone
	entry.Avatar = profile.Avatar
	return entry
}
