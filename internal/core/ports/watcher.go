package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a watch event reports.
type WatchOp uint8

const (
	// OpCreate reports a created file or directory.
	OpCreate WatchOp = iota
	// OpWrite reports a modified file.
	OpWrite
	// OpRemove reports a removed file or directory.
	OpRemove
	// OpRename reports a renamed file or directory.
	OpRename
)

// WatchEvent is a single change below the watched root.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher defines the interface for watching a source tree for changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches root and every directory below it until ctx is done.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
