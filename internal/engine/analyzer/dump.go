package analyzer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/zerr"
)

// DumpMode selects how include trees are printed after analysis.
type DumpMode uint8

const (
	// DumpNone prints nothing.
	DumpNone DumpMode = iota
	// DumpStd prints every header once per translation unit.
	DumpStd
	// DumpFull prints every include edge.
	DumpFull
)

// ParseDumpMode parses "none", "std" or "full".
func ParseDumpMode(s string) (DumpMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return DumpNone, nil
	case "std":
		return DumpStd, nil
	case "full":
		return DumpFull, nil
	default:
		return DumpNone, zerr.With(zerr.New("unknown header dump mode"), "mode", s)
	}
}

const dumpIndent = "   "

// DumpUnit prints the include tree of one translation unit to w.
func DumpUnit(ctx context.Context, w io.Writer, cache *HeaderCache, u Unit, mode DumpMode) error {
	if mode == DumpNone {
		return nil
	}
	if _, err := fmt.Fprintln(w, u.Source); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	onPath := make(map[string]struct{})

	var walk func(paths []string, depth int) error
	walk = func(paths []string, depth int) error {
		for _, path := range paths {
			if mode == DumpStd {
				if _, ok := seen[path]; ok {
					continue
				}
				seen[path] = struct{}{}
			}

			rec, ok := cache.Lookup(u.Scope, path)
			if !ok {
				if _, err := fmt.Fprintf(w, "%s%s <No Info>\n", strings.Repeat(dumpIndent, depth), path); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat(dumpIndent, depth), path); err != nil {
				return err
			}

			// Include cycles are cut where a header reappears on its own path.
			if _, cyclic := onPath[path]; cyclic {
				continue
			}
			nested, err := rec.Includes(ctx)
			if err != nil {
				return err
			}
			onPath[path] = struct{}{}
			err = walk(nested, depth+1)
			delete(onPath, path)
			if err != nil {
				return err
			}
		}
		return nil
	}

	return walk(u.Includes, 1)
}
