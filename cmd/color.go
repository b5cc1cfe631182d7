package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// DisableColorIfNotTerminal disables colorized output if standard output is
// not attached to a terminal, e.g. when output is piped or redirected to a
// file. It should be called once, early, before any color output occurs.
func DisableColorIfNotTerminal() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// DisableColor unconditionally disables colorized output, honoring an
// explicit --no-color flag.
func DisableColor() {
	color.NoColor = true
}
