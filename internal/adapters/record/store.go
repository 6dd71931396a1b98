package record

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore on the local file system.
type Store struct{}

// NewStore creates a new record Store.
func NewStore() *Store {
	return &Store{}
}

// Write stores entries at path unless the file already holds the same bytes.
// The file is replaced atomically, so readers never observe a partial record.
func (s *Store) Write(path string, entries []domain.RecordEntry) (bool, error) {
	data, err := Encode(entries)
	if err != nil {
		return false, err
	}

	//nolint:gosec // Path is derived from the workspace layout
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to create record directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to create temporary record"), "path", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to write record"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to close record"), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to set record permissions"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return false, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to replace record"), "path", path)
	}
	return true, nil
}

// Read parses the record at path. A missing file yields an error matching fs.ErrNotExist.
func (s *Store) Read(path string) ([]domain.RecordEntry, error) {
	//nolint:gosec // Path is derived from the workspace layout
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, "dependency record not found"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to read dependency record"), "path", path)
	}

	entries, err := Decode(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return entries, nil
}

// Remove deletes the record at path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to remove record"), "path", path)
	}
	return nil
}
