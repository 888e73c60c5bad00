// Package blob stores raw clipboard payloads as one file per entry id.
package blob

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rcliao/clipstack/internal/model"
)

// Store keeps blobs directly under a directory, named by their decimal id.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily on
// the first Put.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file that holds the blob for id.
func (s *Store) Path(id uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(id, 10))
}

// Put writes b verbatim, replacing any existing blob for id.
func (s *Store) Put(id uint64, b []byte) error {
	path := s.Path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create blob dir: %w: %w", model.ErrIO, err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write blob %d: %w: %w", id, model.ErrIO, err)
	}
	slog.Debug("blob written", "id", id, "bytes", len(b))
	return nil
}

// Get reads the blob for id.
func (s *Store) Get(id uint64) ([]byte, error) {
	b, err := os.ReadFile(s.Path(id))
	if err != nil {
		return nil, classify("read", id, err)
	}
	return b, nil
}

// Delete removes the blob for id. A missing file is reported as
// model.ErrNotFound so callers can decide how loud to be about it.
func (s *Store) Delete(id uint64) error {
	if err := os.Remove(s.Path(id)); err != nil {
		return classify("delete", id, err)
	}
	slog.Debug("blob deleted", "id", id)
	return nil
}

// Size returns the on-disk size of the blob for id.
func (s *Store) Size(id uint64) (int64, error) {
	info, err := os.Stat(s.Path(id))
	if err != nil {
		return 0, classify("stat", id, err)
	}
	return info.Size(), nil
}

func classify(op string, id uint64, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s blob %d: %w", op, id, model.ErrNotFound)
	}
	return fmt.Errorf("%s blob %d: %w: %w", op, id, model.ErrIO, err)
}
