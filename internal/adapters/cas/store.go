// Package cas stores content stamps of built objects, one file per object.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.StampStore below <root>/.stale/stamps.
type Store struct{}

// NewStore creates a new stamp Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the stamp of an object file. Returns nil, nil if none was recorded.
func (s *Store) Get(root, object string) (*domain.BuildStamp, error) {
	filename := s.filename(root, object)
	//nolint:gosec // Path is constructed from the workspace root and a hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStampStore, "failed to read stamp"), "object", object)
	}

	var stamp domain.BuildStamp
	if err := json.Unmarshal(data, &stamp); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStampStore, "failed to decode stamp"), "object", object)
	}
	return &stamp, nil
}

// Put stores the stamp, replacing any earlier stamp of the same object.
func (s *Store) Put(root string, stamp domain.BuildStamp) error {
	data, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStampStore, "failed to encode stamp"), "object", stamp.Object)
	}

	filename := s.filename(root, stamp.Object)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStampStore, "failed to create stamp directory"), "path", dir)
	}

	//nolint:gosec // Path is constructed from the workspace root and a hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStampStore, "failed to write stamp"), "object", stamp.Object)
	}
	return nil
}

func (s *Store) filename(root, object string) string {
	hash := sha256.Sum256([]byte(filepath.ToSlash(filepath.Clean(object))))
	return filepath.Join(root, domain.DefaultStampPath(), hex.EncodeToString(hash[:])+".json")
}
