// Package detector selects how installation progress is shown.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how progress is rendered.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the live progress view.
	ModeTUI
	// ModePlain logs progress line by line.
	ModePlain
)

// DetectEnvironment returns the recommended output mode for progress written to f.
// Terminals get the live view unless a CI environment variable is set.
func DetectEnvironment(f *os.File) OutputMode {
	isTTY := f != nil && term.IsTerminal(int(f.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModePlain
	}
	return ModeTUI
}

// ResolveMode applies the user's choice to the detected mode.
// userFlag is one of "auto", "tui", "plain" or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tui":
		return ModeTUI
	case "plain", "ci":
		return ModePlain
	default:
		return autoDetected
	}
}
