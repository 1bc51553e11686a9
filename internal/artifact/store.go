// Package artifact stores rendered output files on disk, one directory per
// session, with atomic publication: an artifact becomes visible only after a
// temp-file write and rename completes, so a failed or cancelled render never
// leaves a partial file behind.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidID rejects identifiers that could escape the session directory.
var ErrInvalidID = errors.New("invalid artifact identifier")

// ErrNotFound is returned when the requested artifact file does not exist.
var ErrNotFound = errors.New("artifact file not found")

// Store is a filesystem-backed artifact store rooted at a single directory.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes an artifact through the supplied writer callback and publishes
// it atomically. On any failure the temp file is discarded and the final path
// is never created.
func (s *Store) Save(sessionID, artifactID string, write func(io.Writer) error) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := validID(artifactID); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, artifactID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, artifactID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Open returns a reader over a published artifact.
func (s *Store) Open(sessionID, artifactID string) (io.ReadCloser, error) {
	path, err := s.path(sessionID, artifactID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes one published artifact. Deleting a missing file is not an
// error; the Redis index is the source of truth for existence.
func (s *Store) Delete(sessionID, artifactID string) error {
	path, err := s.path(sessionID, artifactID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteAll removes a session's entire artifact directory.
func (s *Store) DeleteAll(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (s *Store) sessionDir(sessionID string) (string, error) {
	if err := validID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, sessionID), nil
}

func (s *Store) path(sessionID, artifactID string) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	if err := validID(artifactID); err != nil {
		return "", err
	}
	return filepath.Join(dir, artifactID), nil
}

func validID(id string) error {
	if id == "" || id == "." || id == ".." {
		return ErrInvalidID
	}
	if strings.ContainsAny(id, `/\`) {
		return ErrInvalidID
	}
	return nil
}
