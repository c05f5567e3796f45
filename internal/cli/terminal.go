// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for disha CLI output.
//
// Colored and Markdown-rendered output only makes sense on a terminal;
// piped output gets plain text. NO_COLOR and FORCE_COLOR are respected.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, with a floor and
// a fallback for non-terminals.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

var (
	colorOnce    sync.Once
	colorProfile termenv.Profile
)

// GetColorProfile returns the color profile for CLI output: ASCII for
// non-terminals or NO_COLOR, the detected profile otherwise. FORCE_COLOR
// overrides detection.
func GetColorProfile() termenv.Profile {
	colorOnce.Do(func() {
		switch {
		case os.Getenv("FORCE_COLOR") != "":
			colorProfile = termenv.ANSI256
		case os.Getenv("NO_COLOR") != "" || !IsStdoutTTY():
			colorProfile = termenv.Ascii
		default:
			colorProfile = termenv.ColorProfile()
		}
	})
	return colorProfile
}

// ColorsEnabled reports whether styled output should be used.
func ColorsEnabled() bool {
	return GetColorProfile() != termenv.Ascii
}
