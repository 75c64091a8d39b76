// Package syncer coalesces document writes: each key gets at most one write
// per debounce window, carrying the latest scheduled state.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

// WriteFunc persists the latest state for a key.
type WriteFunc func(ctx context.Context) error

type entry struct {
	timer   *time.Timer
	write   WriteFunc
	status  Status
	lastErr error
	savedAt time.Time
	running bool
}

// Syncer schedules debounced writes per key.
type Syncer struct {
	mu       sync.Mutex
	debounce time.Duration
	timeout  time.Duration
	entries  map[string]*entry
	log      *slog.Logger

	// OnDone is called after every write attempt, outside the lock.
	OnDone func(key string, status Status, err error)
}

func New(debounce time.Duration, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		debounce: debounce,
		timeout:  30 * time.Second,
		entries:  make(map[string]*entry),
		log:      log,
	}
}

// Schedule replaces the pending write of key with w and restarts its timer.
func (s *Syncer) Schedule(key string, w WriteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{status: StatusIdle}
		s.entries[key] = e
	}
	e.write = w
	e.status = StatusSyncing
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(s.debounce, func() { s.fire(key) })
}

func (s *Syncer) fire(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.write == nil {
		s.mu.Unlock()
		return
	}
	if e.running {
		// a write is in flight; retry once it had time to finish
		e.timer = time.AfterFunc(s.debounce, func() { s.fire(key) })
		s.mu.Unlock()
		return
	}
	w := e.write
	e.write = nil
	e.timer = nil
	e.running = true
	s.mu.Unlock()

	s.run(key, e, w)
}

func (s *Syncer) run(key string, e *entry, w WriteFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	err := w(ctx)
	cancel()

	s.mu.Lock()
	e.running = false
	e.lastErr = err
	if err != nil {
		e.status = StatusError
	} else if e.write == nil {
		e.status = StatusSaved
		e.savedAt = time.Now()
	}
	status := e.status
	s.mu.Unlock()

	if err != nil {
		s.log.Error("document sync failed", "key", key, "error", err)
	}
	if s.OnDone != nil {
		s.OnDone(key, status, err)
	}
}

// Pending reports whether key has a write scheduled or in flight.
func (s *Syncer) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && (e.write != nil || e.running)
}

// Status returns the sync state of key. "saved" decays to "idle" after two
// seconds, the way clients display it.
func (s *Syncer) Status(key string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return StatusIdle, nil
	}
	if e.status == StatusSaved && time.Since(e.savedAt) > 2*time.Second {
		return StatusIdle, nil
	}
	return e.status, e.lastErr
}

// Flush runs every pending write now and waits for in-flight ones.
func (s *Syncer) Flush(ctx context.Context) {
	for {
		s.mu.Lock()
		var keys []string
		running := false
		for key, e := range s.entries {
			if e.running {
				running = true
				continue
			}
			if e.write != nil {
				if e.timer != nil {
					e.timer.Stop()
				}
				keys = append(keys, key)
			}
		}
		s.mu.Unlock()

		if len(keys) == 0 && !running {
			return
		}
		for _, key := range keys {
			s.fire(key)
		}
		if running {
			select {
			case <-ctx.Done():
				s.log.Warn("document flush interrupted", "error", ctx.Err())
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}
