package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-cashbook-ws/internal/access"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/ws"
	"go-cashbook-ws/pkg/docstore"
	"go-cashbook-ws/pkg/validator"
)

var (
	ErrForbidden        = errors.New("you do not have permission to perform this action")
	ErrBusinessNotFound = errors.New("business not found")
	ErrCashbookNotFound = errors.New("cashbook not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrOwnerImmutable   = errors.New("the business owner cannot be changed or removed")
	ErrAlreadyMember    = errors.New("user is already a member of this business")
	ErrEmailMismatch    = errors.New("this invitation was sent to a different email address")
	ErrSessionExpired   = errors.New("Session expired, please sign in again")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = repository.ErrVersionConflict
	ErrMailDelivery     = errors.New("failed to send invitation email")

	ErrTransactionNotFound = model.ErrTransactionNotFound
)

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(format string, args ...interface{}) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func validate(req interface{}) error {
	if err := validator.Check(req); err != nil {
		return &inputError{msg: err.Error()}
	}
	return nil
}

// Identity is the signed-in caller, taken from the session token.
type Identity struct {
	UserID        string
	Email         string
	Name          string
	Avatar        string
	ProviderToken string
}

func (id Identity) Owner() docstore.Owner {
	return docstore.Owner{ID: id.UserID, AccessToken: id.ProviderToken}
}

func (id Identity) User() model.User {
	return model.User{ID: id.UserID, Name: id.Name, Email: id.Email, Avatar: id.Avatar}
}

// workspaces is shared by every service that reads or mutates the caller's
// document.
type workspaces struct {
	repo repository.WorkspaceRepository
	hub  *ws.Hub
	log  *slog.Logger
	now  func() time.Time
}

func newWorkspaces(repo repository.WorkspaceRepository, hub *ws.Hub, log *slog.Logger) workspaces {
	if log == nil {
		log = slog.Default()
	}
	return workspaces{repo: repo, hub: hub, log: log, now: time.Now}
}

func (w *workspaces) load(ctx context.Context, id Identity) (*model.Workspace, error) {
	seed := id.User()
	doc, err := w.repo.Load(ctx, id.Owner(), &seed)
	return doc, storeError(err)
}

func (w *workspaces) update(ctx context.Context, id Identity, fn func(*model.Workspace) error) (*model.Workspace, error) {
	seed := id.User()
	doc, err := w.repo.Update(ctx, id.Owner(), &seed, fn)
	return doc, storeError(err)
}

// ledger names the document holding a business's cashbooks and roster of
// record: the caller's own, or the host's for a joined business.
type ledger struct {
	owner docstore.Owner
	own   bool
}

func (w *workspaces) loadHost(ctx context.Context, host docstore.Owner, businessID string) (*model.Workspace, error) {
	doc, err := w.repo.Load(ctx, host, nil)
	if errors.Is(err, repository.ErrWorkspaceNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	if doc.Business(businessID) == nil {
		return nil, ErrBusinessNotFound
	}
	return doc, nil
}

// businessLedger loads the document holding businessID. When the host's
// document cannot be read, the caller's own copy is used.
func (w *workspaces) businessLedger(ctx context.Context, id Identity, businessID string) (*model.Workspace, ledger, error) {
	doc, err := w.load(ctx, id)
	if err != nil {
		return nil, ledger{}, err
	}
	own := ledger{owner: id.Owner(), own: true}

	b := doc.Business(businessID)
	if b == nil {
		return nil, ledger{}, ErrBusinessNotFound
	}
	hostID, hosted := b.HostedBy(id.UserID)
	if !hosted {
		return doc, own, nil
	}

	host := docstore.Owner{ID: hostID}
	hostDoc, err := w.loadHost(ctx, host, businessID)
	switch {
	case errors.Is(err, ErrBusinessNotFound):
		return nil, ledger{}, err
	case err != nil:
		w.log.Warn("host workspace unavailable, using own copy", "business_id", businessID, "host_id", hostID, "error", err)
		return doc, own, nil
	}
	return hostDoc, ledger{owner: host}, nil
}

// cashbookLedger finds the document holding cashbookID: the caller's own,
// or the host document of one of the businesses they joined.
func (w *workspaces) cashbookLedger(ctx context.Context, id Identity, cashbookID string) (*model.Workspace, ledger, error) {
	doc, err := w.load(ctx, id)
	if err != nil {
		return nil, ledger{}, err
	}
	if doc.Cashbook(cashbookID) != nil {
		return doc, ledger{owner: id.Owner(), own: true}, nil
	}

	for i := range doc.Businesses {
		b := &doc.Businesses[i]
		hostID, hosted := b.HostedBy(id.UserID)
		if !hosted {
			continue
		}
		host := docstore.Owner{ID: hostID}
		hostDoc, err := w.loadHost(ctx, host, b.ID)
		if err != nil {
			w.log.Warn("host workspace unavailable", "business_id", b.ID, "host_id", hostID, "error", err)
			continue
		}
		if c := hostDoc.Cashbook(cashbookID); c != nil && c.BusinessID == b.ID {
			return hostDoc, ledger{owner: host}, nil
		}
	}
	return nil, ledger{}, ErrCashbookNotFound
}

func (w *workspaces) updateLedger(ctx context.Context, id Identity, l ledger, fn func(*model.Workspace) error) (*model.Workspace, error) {
	if l.own {
		return w.update(ctx, id, fn)
	}
	doc, err := w.repo.Update(ctx, l.owner, nil, fn)
	if errors.Is(err, repository.ErrWorkspaceNotFound) {
		err = ErrBusinessNotFound
	}
	return doc, storeError(err)
}

func (w *workspaces) updateBusiness(ctx context.Context, id Identity, businessID string, fn func(*model.Workspace) error) (ledger, error) {
	_, l, err := w.businessLedger(ctx, id, businessID)
	if err != nil {
		return l, err
	}
	_, err = w.updateLedger(ctx, id, l, fn)
	return l, err
}

func (w *workspaces) updateCashbook(ctx context.Context, id Identity, cashbookID string, fn func(*model.Workspace) error) (ledger, error) {
	_, l, err := w.cashbookLedger(ctx, id, cashbookID)
	if err != nil {
		return l, err
	}
	_, err = w.updateLedger(ctx, id, l, fn)
	return l, err
}

// publishLedger notifies the caller and, for a joined business, the host.
func (w *workspaces) publishLedger(id Identity, l ledger, ev ws.Event) {
	w.publish(id.UserID, ev)
	if !l.own {
		w.publish(l.owner.ID, ev)
	}
}

func (w *workspaces) publish(userID string, ev ws.Event) {
	if w.hub == nil {
		return
	}
	ev.Type = "workspace_update"
	w.hub.Publish(userID, ev)
}

func storeError(err error) error {
	if errors.Is(err, docstore.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	return err
}

// memberBusiness returns the business and the caller's active role in it.
func memberBusiness(doc *model.Workspace, businessID, userID string) (*model.Business, model.Role, error) {
	b := doc.Business(businessID)
	if b == nil {
		return nil, "", ErrBusinessNotFound
	}
	role, ok := access.BusinessRole(b, userID)
	if !ok {
		return nil, "", ErrForbidden
	}
	return b, role, nil
}

// bookAccess returns the cashbook, its business and the caller's resolved
// book access. Callers without view access get ErrForbidden.
func bookAccess(doc *model.Workspace, cashbookID, userID string) (*model.Cashbook, *model.Business, access.Book, error) {
	c := doc.Cashbook(cashbookID)
	if c == nil {
		return nil, nil, access.Book{}, ErrCashbookNotFound
	}
	b := doc.Business(c.BusinessID)
	if b == nil {
		return nil, nil, access.Book{}, ErrBusinessNotFound
	}
	book := access.ResolveBook(b, c, userID)
	if !book.CanView() {
		return nil, nil, book, ErrForbidden
	}
	return c, b, book, nil
}

func forbidden(action string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, action)
}
