package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// driveStore keeps the document in the user's Google Drive, authenticated
// with the user's own OAuth access token.
type driveStore struct {
	name string
	opts []option.ClientOption
}

// NewDriveStore returns a Drive-backed store. Extra options are appended to
// every client, e.g. option.WithEndpoint in tests.
func NewDriveStore(name string, opts ...option.ClientOption) Store {
	return &driveStore{name: name, opts: opts}
}

func (s *driveStore) service(ctx context.Context, owner Owner) (*drive.Service, error) {
	if owner.AccessToken == "" {
		return nil, ErrUnauthorized
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: owner.AccessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return srv, nil
}

func (s *driveStore) Find(ctx context.Context, owner Owner) (string, error) {
	srv, err := s.service(ctx, owner)
	if err != nil {
		return "", err
	}
	list, err := srv.Files.List().
		Q(fmt.Sprintf("name = '%s' and trashed = false", s.name)).
		Fields("files(id, name)").
		Spaces("drive").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapDriveError(err)
	}
	if len(list.Files) == 0 {
		return "", ErrNotFound
	}
	return list.Files[0].Id, nil
}

func (s *driveStore) Read(ctx context.Context, owner Owner, fileID string) ([]byte, error) {
	srv, err := s.service(ctx, owner)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapDriveError(err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *driveStore) Create(ctx context.Context, owner Owner, data []byte) (string, error) {
	srv, err := s.service(ctx, owner)
	if err != nil {
		return "", err
	}
	meta := &drive.File{Name: s.name, MimeType: "application/json"}
	f, err := srv.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType("application/json")).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapDriveError(err)
	}
	return f.Id, nil
}

func (s *driveStore) Update(ctx context.Context, owner Owner, fileID string, data []byte) error {
	srv, err := s.service(ctx, owner)
	if err != nil {
		return err
	}
	_, err = srv.Files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(data), googleapi.ContentType("application/json")).
		Context(ctx).
		Do()
	return mapDriveError(err)
}

// mapDriveError turns Drive status codes into store errors.
func mapDriveError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
		case http.StatusNotFound:
			return ErrNotFound
		}
	}
	return err
}
