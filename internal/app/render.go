package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/ui/output"
	"go.trai.ch/stale/internal/ui/style"
	"go.trai.ch/zerr"
)

const indent = "   "

// renderPlans prints one block per project: the compiles, the objects and
// libraries of the link, and the link verdict.
func renderPlans(w io.Writer, root string, plans []*domain.ProjectPlan, explain bool) error {
	out := output.New(w)
	pending := func(s string) string { return out.String(s).Foreground(out.Color(string(style.Stale))).String() }
	done := func(s string) string { return out.String(s).Foreground(out.Color(string(style.Fresh))).String() }
	dim := func(s string) string { return out.String(s).Foreground(out.Color(string(style.Muted))).String() }

	var b strings.Builder
	for i, plan := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s) %s\n", plan.Project, plan.Kind, relPath(root, plan.Output))
		if plan.Degraded {
			fmt.Fprintf(&b, "%s%s no usable dependency record\n", indent, pending(style.Warning))
		}

		for _, c := range plan.Compiles {
			switch {
			case c.Required:
				fmt.Fprintf(&b, "%s%s compile %s", indent, pending(style.Dot), c.Source)
			case explain:
				fmt.Fprintf(&b, "%s%s keep %s", indent, done(style.Check), c.Source)
			default:
				continue
			}
			if explain {
				b.WriteString(dim(" (" + explainPath(root, c.Reason, c.Cause) + ")"))
			}
			b.WriteString("\n")
		}

		for _, obj := range plan.Objects {
			fmt.Fprintf(&b, "%sobject %s\n", indent, dim(relPath(root, obj)))
		}
		for _, lib := range plan.Libraries {
			fmt.Fprintf(&b, "%slibrary %s\n", indent, dim(relPath(root, lib)))
		}

		verdict := done(style.Check + " up to date")
		if plan.Relink {
			verdict = pending(style.Dot + " relink")
		}
		b.WriteString(indent + verdict)
		if explain {
			b.WriteString(dim(" (" + explainPath(root, plan.Reason, plan.Cause) + ")"))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// explainPath renders a reason with its cause shown relative to the workspace root.
func explainPath(root, reason, cause string) string {
	if cause == "" {
		return reason
	}
	return reason + ": " + relPath(root, cause)
}

func relPath(root, path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// renderTree prints the dependency tree below start top down, listing a
// project once per path that reaches it. File copy projects are left out.
func renderTree(ctx context.Context, w io.Writer, ws *domain.Workspace, start string) error {
	var b strings.Builder
	completed, err := ws.Graph.Traverse(start, domain.TopDown|domain.Full, func(name string, depth int) bool {
		if ctx.Err() != nil {
			return false
		}
		p, err := ws.Project(name)
		if err != nil || p.Kind == domain.KindFileCopy {
			return true
		}
		if depth == 1 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat(indent, depth-1) + name + "\n")
		return true
	})
	if err != nil {
		return err
	}
	if !completed {
		return zerr.With(zerr.Wrap(domain.ErrTraversalStopped, "dependency tree incomplete"), "target", start)
	}

	_, err = io.WriteString(w, b.String())
	return err
}
