// Package fs provides file system adapters for probing, resolving, walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// skippedDirs are never descended into.
var skippedDirs = []string{".git", ".jj", ".stale"}

// Walker walks directory trees.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields root and every directory below it, skipping VCS and
// internal directories and any directory whose path is in ignores.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable directories are skipped, not fatal.
				return nil //nolint:nilerr // walking continues past problematic directories
			}
			if !d.IsDir() {
				return nil
			}
			if w.shouldSkip(path, d.Name(), ignores) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkip(path, name string, ignores []string) bool {
	if slices.Contains(skippedDirs, name) {
		return true
	}
	return slices.Contains(ignores, filepath.Clean(path))
}
