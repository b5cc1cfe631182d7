package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treepatch/treepatch/pkg/patch"
)

var appendOptions struct {
	output string
}

var appendCommand = &cobra.Command{
	Use:   "append <first> <second>",
	Short: "Merge two sequential patches into one equivalent patch",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, arguments []string) error {
		first, second := arguments[0], arguments[1]
		if err := patch.Merge(first, second, appendOptions.output); err != nil {
			return err
		}
		fmt.Printf("Merged patch written to %s.\n", appendOptions.output)
		return nil
	},
}

func init() {
	flags := appendCommand.Flags()
	flags.StringVarP(&appendOptions.output, "output", "o", "merged.tpatch", "path at which to write the merged patch")
}
