package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileStore keeps each document at <dir>/<owner>/<name>. It is the local
// counterpart of the remote store, used for single-machine and guest setups.
type fileStore struct {
	mu   sync.Mutex
	dir  string
	name string
}

func NewFileStore(dir, name string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &fileStore{dir: dir, name: name}, nil
}

func (s *fileStore) path(owner Owner) (string, error) {
	id := owner.ID
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid owner id %q", id)
	}
	return filepath.Join(s.dir, id, s.name), nil
}

func (s *fileStore) Find(ctx context.Context, owner Owner) (string, error) {
	p, err := s.path(owner)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	return owner.ID + "/" + s.name, nil
}

func (s *fileStore) Read(ctx context.Context, owner Owner, fileID string) ([]byte, error) {
	p, err := s.path(owner)
	if err != nil {
		return nil, err
	}
	if fileID != owner.ID+"/"+s.name {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *fileStore) Create(ctx context.Context, owner Owner, data []byte) (string, error) {
	if err := s.write(owner, data); err != nil {
		return "", err
	}
	return owner.ID + "/" + s.name, nil
}

func (s *fileStore) Update(ctx context.Context, owner Owner, fileID string, data []byte) error {
	if fileID != owner.ID+"/"+s.name {
		return ErrNotFound
	}
	return s.write(owner, data)
}

// write replaces the file atomically through a rename.
func (s *fileStore) write(owner Owner, data []byte) error {
	p, err := s.path(owner)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), s.name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}
