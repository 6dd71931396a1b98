package ports

import "go.trai.ch/stale/internal/core/domain"

// RecordStore defines the interface for reading and writing dependency record files.
//
//go:generate go run go.uber.org/mock/mockgen -source=record_store.go -destination=mocks/mock_record_store.go -package=mocks
type RecordStore interface {
	// Write stores entries at path. The file is only rewritten when its
	// content changes; the returned bool reports whether it was.
	Write(path string, entries []domain.RecordEntry) (bool, error)

	// Read parses the record at path.
	Read(path string) ([]domain.RecordEntry, error)

	// Remove deletes the record at path. A missing file is not an error.
	Remove(path string) error
}
