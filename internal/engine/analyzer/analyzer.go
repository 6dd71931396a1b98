// Package analyzer discovers the headers each translation unit includes,
// directly or transitively, and persists the closures as dependency records.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

// Unit is the analysis result of one translation unit.
type Unit struct {
	// Source is the translation unit as listed by the project.
	Source string
	// Includes are the headers the unit includes directly.
	Includes []string
	// Closure is the deduplicated transitive header closure in preorder.
	Closure []string
	// Scope is the cache scope the unit's headers were scanned under.
	Scope Scope
}

// Analyzer scans translation units and writes dependency records.
type Analyzer struct {
	prober ports.Prober
	store  ports.RecordStore
	logger ports.Logger
}

// New creates a new Analyzer.
func New(prober ports.Prober, store ports.RecordStore, logger ports.Logger) *Analyzer {
	return &Analyzer{
		prober: prober,
		store:  store,
		logger: logger,
	}
}

// MakeDepends analyzes every translation unit of p and writes its dependency
// record. On failure the record is removed, so it is either absent or correct.
// It reports whether the record file changed.
func (a *Analyzer) MakeDepends(ctx context.Context, cache *HeaderCache, ws *domain.Workspace, p *domain.Project) ([]Unit, bool, error) {
	units, err := a.AnalyzeProject(ctx, cache, ws, p)
	if err != nil {
		if rmErr := a.store.Remove(p.RecordPath()); rmErr != nil {
			a.logger.Warn(fmt.Sprintf("could not remove dependency record of %s: %v", p.Name, rmErr))
		}
		return nil, false, err
	}

	entries := make([]domain.RecordEntry, 0, len(units))
	for _, u := range units {
		entries = append(entries, domain.RecordEntry{Source: u.Source, Headers: u.Closure})
	}

	changed, err := a.store.Write(p.RecordPath(), entries)
	if err != nil {
		if rmErr := a.store.Remove(p.RecordPath()); rmErr != nil {
			a.logger.Warn(fmt.Sprintf("could not remove dependency record of %s: %v", p.Name, rmErr))
		}
		return nil, false, zerr.With(err, "project", p.Name)
	}
	return units, changed, nil
}

// AnalyzeProject computes the header closure of every translation unit of p,
// in the order the project lists them.
func (a *Analyzer) AnalyzeProject(ctx context.Context, cache *HeaderCache, ws *domain.Workspace, p *domain.Project) ([]Unit, error) {
	search := ws.SearchPath(p)
	scope := ScopeOf(search)
	units := make([]Unit, 0, len(p.Sources))

	for _, tu := range p.Sources {
		includes, err := a.scanFile(ctx, cache, p.SourcePath(tu), search, scope)
		if err != nil {
			return nil, zerr.With(err, "project", p.Name)
		}

		closure, err := Closure(ctx, cache, scope, includes)
		if err != nil {
			return nil, zerr.With(err, "project", p.Name)
		}
		units = append(units, Unit{Source: tu, Includes: includes, Closure: closure, Scope: scope})
	}
	return units, nil
}

// scanFile returns the resolved direct includes of path, scanning every header
// not yet in the cache.
func (a *Analyzer) scanFile(ctx context.Context, cache *HeaderCache, path string, search []string, scope Scope) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // Path comes from the project definition or the include search path
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrFilesystem, "failed to read source file"), "file", path)
	}

	var includes []string
	scanner := newConditionalScanner()
	for d, err := range scanner.includes(Directives(src)) {
		if err != nil {
			return nil, zerr.With(err, "file", path)
		}

		resolved, ok := a.resolve(d.Path, search)
		if !ok {
			return nil, zerr.With(zerr.With(zerr.With(
				zerr.Wrap(domain.ErrMissingIncludeFile, "include not found"),
				"file", path),
				"include", d.Path),
				"line", d.Line)
		}
		if slices.Contains(includes, resolved) {
			continue
		}
		includes = append(includes, resolved)

		rec, created := cache.acquire(scope, resolved)
		if !created {
			continue
		}
		a.logger.Debug("scanning " + resolved)
		nested, err := a.scanFile(ctx, cache, rec.Path, search, scope)
		rec.finish(nested, err)
		if err != nil {
			return nil, err
		}
	}
	return includes, nil
}

// resolve finds name in the first search directory that holds it.
func (a *Analyzer) resolve(name string, search []string) (string, bool) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), a.prober.Exists(name)
	}
	for _, dir := range search {
		candidate := filepath.Join(dir, name)
		if a.prober.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Closure flattens the headers reachable from includes under scope into
// preorder, listing each header once.
func Closure(ctx context.Context, cache *HeaderCache, scope Scope, includes []string) ([]string, error) {
	emitted := make(map[string]struct{})
	out := make([]string, 0, len(includes))

	var walk func(paths []string) error
	walk = func(paths []string) error {
		for _, path := range paths {
			if _, ok := emitted[path]; ok {
				continue
			}
			emitted[path] = struct{}{}
			out = append(out, path)

			rec, ok := cache.Lookup(scope, path)
			if !ok {
				continue
			}
			nested, err := rec.Includes(ctx)
			if err != nil {
				return err
			}
			if err := walk(nested); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(includes); err != nil {
		return nil, err
	}
	return out, nil
}
