// Package detector selects how command results are rendered for the current terminal.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents the rendering mode for command results.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTable renders styled lipgloss tables.
	ModeTable
	// ModePlain renders tab-separated rows for pipes and CI logs.
	ModePlain
	// ModeJSON renders one JSON document.
	ModeJSON
)

// String returns the flag spelling of the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeTable:
		return "table"
	case ModePlain:
		return "plain"
	case ModeJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModePlain
	}
	return ModeTable
}

// ResolveMode applies user override flag to auto-detection.
// userFlag should be one of: "auto", "table", "plain", "tsv", "json", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "table":
		return ModeTable
	case "plain", "tsv":
		return ModePlain
	case "json":
		return ModeJSON
	default:
		return autoDetected
	}
}
