package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treepatch/treepatch/pkg/patch"
)

var diffOptions struct {
	output        string
	sourceVersion string
	targetVersion string
	description   string
	ignore        []string
}

var diffCommand = &cobra.Command{
	Use:   "diff <source_dir> <target_dir>",
	Short: "Compute a patch from source_dir to target_dir",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, arguments []string) error {
		sourceDir, targetDir := arguments[0], arguments[1]

		err := patch.Create(sourceDir, targetDir, diffOptions.output, patch.CreateOptions{
			SourceVersion: diffOptions.sourceVersion,
			TargetVersion: diffOptions.targetVersion,
			Description:   diffOptions.description,
			Ignore:        diffOptions.ignore,
		})
		if err == patch.ErrEmptyDiff {
			fmt.Println("No differences found; no patch written.")
			return nil
		}
		return err
	},
}

func init() {
	flags := diffCommand.Flags()
	flags.StringVarP(&diffOptions.output, "output", "o", "patch.tpatch", "path at which to write the patch archive")
	flags.StringVar(&diffOptions.sourceVersion, "source-version", "", "optional label for the source tree's version")
	flags.StringVar(&diffOptions.targetVersion, "target-version", "", "optional label for the target tree's version")
	flags.StringVar(&diffOptions.description, "description", "", "optional free-form description of the patch")
	flags.StringSliceVar(&diffOptions.ignore, "ignore", nil, "ignore pattern (may be specified multiple times)")
}
