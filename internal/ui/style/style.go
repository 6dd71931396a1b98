// Package style holds the colors and icons shared by log and plan output.
package style

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Plan roles.
var (
	// Stale marks work a plan requires.
	Stale = Yellow
	// Fresh marks outputs a plan keeps.
	Fresh = Green
	// Muted is used for paths and reasons.
	Muted = Slate
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)
