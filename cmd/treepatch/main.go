// Command treepatch computes, applies, merges, and inspects directory-level
// binary patches.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/treepatch/treepatch/cmd"
	"github.com/treepatch/treepatch/pkg/logging"
)

var (
	verbosity int
	noColor   bool
)

var rootCommand = &cobra.Command{
	Use:           "treepatch",
	Short:         "Compute, apply, merge, and inspect directory-level binary patches",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		switch {
		case verbosity >= 2:
			logging.SetLevel(logging.LevelDebug)
		case verbosity == 1:
			logging.SetLevel(logging.LevelInfo)
		}
		if noColor {
			cmd.DisableColor()
		} else {
			cmd.DisableColorIfNotTerminal()
		}
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.CountVarP(&verbosity, "verbose", "v", "show informational output (-v) or debug output including merge resolution notes (-vv)")
	flags.BoolVar(&noColor, "no-color", false, "disable colorized output")

	rootCommand.AddCommand(
		diffCommand,
		applyCommand,
		appendCommand,
		showCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Error(err)
		os.Exit(1)
	}
}
