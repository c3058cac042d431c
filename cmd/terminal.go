package cmd

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// getTerminalSize reports the console size, preferring COLUMNS and LINES when
// both are set. Zero means unknown.
func getTerminalSize() (int, int) {
	if c, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		if r, err := strconv.Atoi(os.Getenv("LINES")); err == nil {
			return c, r
		}
	}
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0
	}
	return w, h
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
