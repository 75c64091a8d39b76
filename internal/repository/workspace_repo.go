package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/syncer"
	"go-cashbook-ws/pkg/docstore"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrVersionConflict   = errors.New("workspace was changed by another session")
)

// WorkspaceRepository reads and writes the per-user workspace document.
// Mutations are visible to readers immediately; the document store is
// written behind a debounce.
type WorkspaceRepository interface {
	// Load returns the owner's workspace. When none exists and seed is not
	// nil, an initial workspace for seed is created.
	Load(ctx context.Context, owner docstore.Owner, seed *model.User) (*model.Workspace, error)
	// Update applies fn to the workspace and schedules a write. Nothing is
	// stored when fn fails.
	Update(ctx context.Context, owner docstore.Owner, seed *model.User, fn func(*model.Workspace) error) (*model.Workspace, error)
	// Replace overwrites the whole document. A non-nil expected version must
	// match the stored one.
	Replace(ctx context.Context, owner docstore.Owner, doc *model.Workspace, expected *int64) (*model.Workspace, error)
	Status(userID string) (syncer.Status, error)
	Flush(ctx context.Context)
}

type pendingDoc struct {
	data []byte
	seq  uint64
}

type workspaceRepo struct {
	store  docstore.Store
	cache  WorkspaceCache
	syncer *syncer.Syncer
	log    *slog.Logger

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	pending map[string]pendingDoc
	tokens  map[string]string
	seq     uint64
}

func NewWorkspaceRepo(store docstore.Store, cache WorkspaceCache, s *syncer.Syncer, log *slog.Logger) WorkspaceRepository {
	if cache == nil {
		cache = NoCache()
	}
	if log == nil {
		log = slog.Default()
	}
	return &workspaceRepo{
		store:   store,
		cache:   cache,
		syncer:  s,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
		pending: make(map[string]pendingDoc),
		tokens:  make(map[string]string),
	}
}

func (r *workspaceRepo) lock(userID string) func() {
	r.mu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// credentials remembers the latest access token of each owner and fills it
// in when a request on their document arrives without one, as happens when
// another user's action touches it. A token-less write must not replace a
// pending write that carried credentials.
func (r *workspaceRepo) credentials(owner docstore.Owner) docstore.Owner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner.AccessToken != "" {
		r.tokens[owner.ID] = owner.AccessToken
		return owner
	}
	owner.AccessToken = r.tokens[owner.ID]
	return owner
}

func (r *workspaceRepo) Load(ctx context.Context, owner docstore.Owner, seed *model.User) (*model.Workspace, error) {
	defer r.lock(owner.ID)()
	owner = r.credentials(owner)

	ws, created, err := r.load(ctx, owner, seed)
	if err != nil {
		return nil, err
	}
	if created {
		if err := r.commit(ctx, owner, ws); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

func (r *workspaceRepo) Update(ctx context.Context, owner docstore.Owner, seed *model.User, fn func(*model.Workspace) error) (*model.Workspace, error) {
	defer r.lock(owner.ID)()
	owner = r.credentials(owner)

	ws, _, err := r.load(ctx, owner, seed)
	if err != nil {
		return nil, err
	}
	if err := fn(ws); err != nil {
		return nil, err
	}
	ws.Touch()
	if err := r.commit(ctx, owner, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *workspaceRepo) Replace(ctx context.Context, owner docstore.Owner, doc *model.Workspace, expected *int64) (*model.Workspace, error) {
	defer r.lock(owner.ID)()
	owner = r.credentials(owner)

	var current int64
	cur, _, err := r.load(ctx, owner, nil)
	switch {
	case errors.Is(err, ErrWorkspaceNotFound):
	case err != nil:
		return nil, err
	default:
		current = cur.Version
	}

	if expected != nil && *expected != current {
		return nil, fmt.Errorf("%w: stored version is %d", ErrVersionConflict, current)
	}

	normalize(doc)
	doc.Version = current
	doc.Touch()
	if err := r.commit(ctx, owner, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *workspaceRepo) Status(userID string) (syncer.Status, error) {
	return r.syncer.Status(userID)
}

func (r *workspaceRepo) Flush(ctx context.Context) {
	r.syncer.Flush(ctx)
}

// load must be called with the owner's lock held. The pending copy wins over
// the cache, and the cache over the store.
func (r *workspaceRepo) load(ctx context.Context, owner docstore.Owner, seed *model.User) (*model.Workspace, bool, error) {
	r.mu.Lock()
	p, ok := r.pending[owner.ID]
	r.mu.Unlock()
	if ok {
		ws, err := decode(p.data)
		return ws, false, err
	}

	data, hit, err := r.cache.Get(ctx, owner.ID)
	if err != nil {
		r.log.Warn("workspace cache read failed", "user_id", owner.ID, "error", err)
	} else if hit {
		if ws, err := decode(data); err == nil {
			return ws, false, nil
		}
		r.log.Warn("dropping unreadable cached workspace", "user_id", owner.ID)
	}

	data, err = docstore.Load(ctx, r.store, owner)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		if seed == nil {
			return nil, false, ErrWorkspaceNotFound
		}
		r.log.Info("creating initial workspace", "user_id", owner.ID)
		return model.NewWorkspace(*seed), true, nil
	case err != nil:
		return nil, false, err
	}

	ws, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	if err := r.cache.Set(ctx, owner.ID, data); err != nil {
		r.log.Warn("workspace cache write failed", "user_id", owner.ID, "error", err)
	}
	return ws, false, nil
}

func (r *workspaceRepo) commit(ctx context.Context, owner docstore.Owner, ws *model.Workspace) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.pending[owner.ID] = pendingDoc{data: data, seq: seq}
	r.mu.Unlock()

	if err := r.cache.Set(ctx, owner.ID, data); err != nil {
		r.log.Warn("workspace cache write failed", "user_id", owner.ID, "error", err)
	}

	r.syncer.Schedule(owner.ID, func(ctx context.Context) error {
		if _, err := docstore.Save(ctx, r.store, owner, data); err != nil {
			return err
		}
		r.mu.Lock()
		if p, ok := r.pending[owner.ID]; ok && p.seq == seq {
			delete(r.pending, owner.ID)
		}
		r.mu.Unlock()
		return nil
	})
	return nil
}

func decode(data []byte) (*model.Workspace, error) {
	var ws model.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	normalize(&ws)
	return &ws, nil
}

func normalize(ws *model.Workspace) {
	if ws.Businesses == nil {
		ws.Businesses = []model.Business{}
	}
	if ws.Cashbooks == nil {
		ws.Cashbooks = []model.Cashbook{}
	}
	for i := range ws.Cashbooks {
		if ws.Cashbooks[i].Transactions == nil {
			ws.Cashbooks[i].Transactions = []model.Transaction{}
		}
	}
}
