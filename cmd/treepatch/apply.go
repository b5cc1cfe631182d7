package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treepatch/treepatch/pkg/patch"
)

var applyOptions struct {
	patchPath string
}

var applyCommand = &cobra.Command{
	Use:   "apply <target_dir>",
	Short: "Apply a patch to target_dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, arguments []string) error {
		targetDir := arguments[0]
		if err := patch.Apply(targetDir, applyOptions.patchPath); err != nil {
			return err
		}
		fmt.Println("Patch applied.")
		return nil
	},
}

func init() {
	flags := applyCommand.Flags()
	flags.StringVarP(&applyOptions.patchPath, "patch", "p", "", "path to the patch archive to apply")
	applyCommand.MarkFlagRequired("patch")
}
