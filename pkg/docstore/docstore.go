// Package docstore persists one JSON document per user. Backends mirror the
// operations of a cloud file store: find the document, read it, create it,
// and overwrite it whole.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrUnauthorized = errors.New("document store rejected the credentials")
)

// Owner identifies whose document is addressed. AccessToken is only used by
// remote backends.
type Owner struct {
	ID          string
	AccessToken string
}

type Store interface {
	// Find returns the file id of the owner's document or ErrNotFound.
	Find(ctx context.Context, owner Owner) (string, error)
	Read(ctx context.Context, owner Owner, fileID string) ([]byte, error)
	Create(ctx context.Context, owner Owner, data []byte) (string, error)
	Update(ctx context.Context, owner Owner, fileID string, data []byte) error
}

// Load finds and reads the owner's document.
func Load(ctx context.Context, s Store, owner Owner) ([]byte, error) {
	id, err := s.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, owner, id)
}

// Save overwrites the owner's document, creating it on first write.
func Save(ctx context.Context, s Store, owner Owner, data []byte) (string, error) {
	id, err := s.Find(ctx, owner)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.Create(ctx, owner, data)
	case err != nil:
		return "", err
	}
	return id, s.Update(ctx, owner, id, data)
}
