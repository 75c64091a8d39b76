package service

import (
	"context"
	"log/slog"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/syncer"
	"go-cashbook-ws/internal/ws"
)

type SyncService interface {
	// Fetch returns the caller's document, creating the initial one on first use.
	Fetch(ctx context.Context, id Identity) (*model.Workspace, error)
	// Push replaces the caller's document. version, when set, must match.
	Push(ctx context.Context, id Identity, doc *model.Workspace, version *int64) (*model.Workspace, error)
	Status(id Identity) SyncStatus
}

type SyncStatus struct {
	Status syncer.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

type syncService struct {
	workspaces
}

func NewSyncService(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) SyncService {
	return &syncService{workspaces: newWorkspaces(repo, hub, log)}
}

func (s *syncService) Fetch(ctx context.Context, id Identity) (*model.Workspace, error) {
	return s.load(ctx, id)
}

func (s *syncService) Push(ctx context.Context, id Identity, doc *model.Workspace, version *int64) (*model.Workspace, error) {
	if doc == nil {
		return nil, invalid("data is required")
	}
	if doc.User.ID == "" {
		doc.User = id.User()
	}
	if doc.User.ID != id.UserID {
		return nil, forbidden("document belongs to another user")
	}
	if doc.ActiveBusinessID != "" && doc.Business(doc.ActiveBusinessID) == nil {
		return nil, invalid("activeBusinessId %q is not in the document", doc.ActiveBusinessID)
	}

	saved, err := s.repo.Replace(ctx, id.Owner(), doc, version)
	if err != nil {
		return nil, storeError(err)
	}

	s.publish(id.UserID, ws.Event{Action: "workspace_replaced", Data: versionInfo(saved)})
	return saved, nil
}

func (s *syncService) Status(id Identity) SyncStatus {
	st, err := s.repo.Status(id.UserID)
	out := SyncStatus{Status: st}
	if st == syncer.StatusError && err != nil {
		out.Error = storeError(err).Error()
	}
	return out
}

func versionInfo(doc *model.Workspace) map[string]interface{} {
	return map[string]interface{}{"version": doc.Version, "updatedAt": doc.UpdatedAt}
}
