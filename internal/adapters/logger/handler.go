package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/stale/internal/ui/output"
	"go.trai.ch/stale/internal/ui/style"
)

// levelStyle is the icon and color of the first line of a record.
type levelStyle struct {
	icon  string
	color lipgloss.Color
}

func styleFor(level slog.Level) levelStyle {
	switch {
	case level >= slog.LevelError:
		return levelStyle{icon: style.Cross, color: style.Red}
	case level >= slog.LevelWarn:
		return levelStyle{icon: style.Warning, color: style.Yellow}
	case level < slog.LevelInfo:
		return levelStyle{icon: style.Circle, color: style.Iris}
	default:
		return levelStyle{color: style.Slate}
	}
}

// PrettyHandler is a slog.Handler that writes one icon-prefixed line per
// record. Further lines of a message, such as a cause chain, are dimmed.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	// attrs are rendered when added, under the group current at that time.
	attrs []string
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to w, or stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}
	h := &PrettyHandler{out: output.New(w), level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	st := styleFor(r.Level)
	first, rest, _ := strings.Cut(r.Message, "\n")
	if st.icon != "" {
		first = st.icon + " " + first
	}

	attrs := slices.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.formatAttr(a))
		return true
	})
	if len(attrs) > 0 {
		first += " " + strings.Join(attrs, " ")
	}

	var b strings.Builder
	b.WriteString(h.paint(first, st.color))
	b.WriteString("\n")
	if rest != "" {
		for line := range strings.SplitSeq(rest, "\n") {
			b.WriteString(h.paint(line, style.Slate))
			b.WriteString("\n")
		}
	}

	_, err := h.out.WriteString(b.String())
	return err
}

func (h *PrettyHandler) paint(s string, c lipgloss.Color) string {
	if s == "" {
		return s
	}
	return h.out.String(s).Foreground(h.out.Color(string(c))).String()
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.formatAttr(a))
	}
	return &next
}

// WithGroup returns a new Handler that prefixes attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = name
	if h.group != "" {
		next.group = h.group + "." + name
	}
	return &next
}

func (h *PrettyHandler) formatAttr(a slog.Attr) string {
	if h.group == "" {
		return a.Key + "=" + a.Value.String()
	}
	return h.group + "." + a.Key + "=" + a.Value.String()
}
