package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/treepatch/treepatch/pkg/patch"
)

var showCommand = &cobra.Command{
	Use:   "show <patch>",
	Short: "Print a patch's metadata, manifest, and a preview of modified text files",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, arguments []string) error {
		return patch.Show(arguments[0], os.Stdout)
	},
}
