// SPDX-License-Identifier: MIT

// Package credstore persists per-session credential blobs as individual files
// under <dir>/<id>.creds with atomic, durable replacement.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/sessiond/internal/domain/session/model"
	xglog "github.com/ManuGH/sessiond/internal/log"
)

const blobSuffix = ".creds"

// Store is a file-backed ports.CredentialStore.
type Store struct {
	dir string
}

// New creates the backing directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id model.SessionID) (string, error) {
	// Path confinement: the ID grammar forbids separators and dots, so the
	// join cannot escape the directory. Re-check anyway.
	if !model.IsSafeSessionID(string(id)) {
		return "", fmt.Errorf("unsafe session id %q", id)
	}
	return filepath.Join(s.dir, string(id)+blobSuffix), nil
}

// Load returns the blob for id, or (nil, nil) if none is stored.
func (s *Store) Load(ctx context.Context, id model.SessionID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials for %s: %w", id, err)
	}
	return blob, nil
}

// Save atomically replaces the blob for id. renameio handles temp file
// creation, fsync and rename, so a crash mid-save never leaves a partial
// blob loadable.
func (s *Store) Save(ctx context.Context, id model.SessionID, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(id)
	if err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(p, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending credential file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger := xglog.WithComponent("credstore")
			logger.Debug().Err(err).Msg("cleanup pending credential file")
		}
	}()

	if _, err := pending.Write(blob); err != nil {
		return fmt.Errorf("write credential blob: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace credential blob: %w", err)
	}
	return nil
}

// Delete removes the blob for id. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, id model.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete credentials for %s: %w", id, err)
	}
	return nil
}

// List returns the IDs that currently have a stored blob.
func (s *Store) List(ctx context.Context) ([]model.SessionID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan credential dir: %w", err)
	}
	var ids []model.SessionID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, blobSuffix) {
			continue
		}
		raw := strings.TrimSuffix(name, blobSuffix)
		id, err := model.ParseSessionID(raw)
		if err != nil {
			continue // foreign file, not ours
		}
		ids = append(ids, id)
	}
	return ids, nil
}
