package ports

import "go.trai.ch/stale/internal/core/domain"

// Prober defines the interface for inspecting files on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=prober.go -destination=mocks/mock_prober.go -package=mocks
type Prober interface {
	// Exists reports whether path names an existing regular file.
	Exists(path string) bool

	// Stamp returns the modification time of path. A missing file yields the
	// epoch with Exists unset and no error.
	Stamp(path string) (domain.FileStamp, error)
}
