// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping
	MinTerminalWidth = 40
)

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// GetTerminalWidth returns the current terminal width.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

// configureColor disables styling for piped output, NO_COLOR, or --no-color.
func configureColor(noColor bool) {
	switch {
	case noColor || os.Getenv("NO_COLOR") != "":
		lipgloss.SetColorProfile(termenv.Ascii)
	case os.Getenv("FORCE_COLOR") != "":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case !term.IsTerminal(int(os.Stdout.Fd())):
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// =============================================================================
// PROMPTS
// =============================================================================

// prompt reads one line of input after printing label.
func (e *Env) prompt(label string) (string, error) {
	if e.reader == nil {
		e.reader = bufio.NewReader(e.In)
	}
	fmt.Fprint(e.Err, label)
	line, err := e.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func (e *Env) promptPassword(label string) (string, error) {
	if f, ok := e.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.Err, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.Err)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return e.prompt(label)
}
