// Package style holds the colors and icons shared by log lines and result tables.
package style

import "github.com/charmbracelet/lipgloss"

// Colors. Iris marks table headers; Slate is used for borders, timestamps and informational log lines.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Log level icons.
const (
	Cross   = "✗"
	Warning = "!"
)
