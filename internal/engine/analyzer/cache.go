package analyzer

import (
	"context"
	"strings"
	"sync"

	"go.trai.ch/stale/internal/core/domain"
)

// HeaderRecord is a header found during a run together with the headers it
// includes directly. The record is complete once its scan has finished.
type HeaderRecord struct {
	Path string

	includes []string
	err      error
	ready    chan struct{}
}

// Includes waits for the scan of the header and returns its direct includes
// as resolved paths, or the error that stopped the scan.
func (r *HeaderRecord) Includes(ctx context.Context) ([]string, error) {
	select {
	case <-r.ready:
		return r.includes, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Scanned reports whether the scan of the header has finished.
func (r *HeaderRecord) Scanned() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}

func (r *HeaderRecord) finish(includes []string, err error) {
	r.includes = includes
	r.err = err
	close(r.ready)
}

// HeaderCache holds every header seen during one run. A header's nested
// includes resolve against the search path of the project that reached it, so
// records are keyed by resolved path and search path together. It is safe for
// concurrent use; each header is scanned at most once per search path.
type HeaderCache struct {
	mu      sync.Mutex
	records map[headerKey]*HeaderRecord
}

type headerKey struct {
	scope domain.InternedString
	path  domain.InternedString
}

// NewHeaderCache creates an empty cache for one run.
func NewHeaderCache() *HeaderCache {
	return &HeaderCache{records: make(map[headerKey]*HeaderRecord)}
}

// Scope identifies an include search path within the cache.
type Scope string

// ScopeOf returns the cache scope of an ordered include search path.
func ScopeOf(search []string) Scope {
	return Scope(strings.Join(search, "\x00"))
}

func newHeaderKey(scope Scope, path string) headerKey {
	return headerKey{
		scope: domain.NewInternedString(string(scope)),
		path:  domain.NewInternedString(path),
	}
}

// acquire returns the record for path under scope. The second result is true
// when the record was created by this call, in which case the caller must scan it.
func (c *HeaderCache) acquire(scope Scope, path string) (*HeaderRecord, bool) {
	key := newHeaderKey(scope, path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[key]; ok {
		return rec, false
	}
	rec := &HeaderRecord{Path: path, ready: make(chan struct{})}
	c.records[key] = rec
	return rec, true
}

// Lookup returns the record for a resolved header path scanned under scope.
func (c *HeaderCache) Lookup(scope Scope, path string) (*HeaderRecord, bool) {
	key := newHeaderKey(scope, path)

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[key]
	return rec, ok
}

// Len returns the number of header scans held by the cache.
func (c *HeaderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
