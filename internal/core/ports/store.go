package ports

import "go.trai.ch/stale/internal/core/domain"

// StampStore defines the interface for storing content stamps of built objects.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StampStore interface {
	// Get retrieves the stamp for an object file below the workspace root.
	// Returns nil, nil if not found.
	Get(root, object string) (*domain.BuildStamp, error)

	// Put stores the stamp below the workspace root.
	Put(root string, stamp domain.BuildStamp) error
}
