package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compute tags and write the variable file",
	Long: `Resolves the dependency graph, computes a content-addressed version tag
for every build target in dependency order, and writes the variable file
declared by project.write. Validation errors abort before any output is
produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		report := client.Validate()
		for _, w := range report.Warnings {
			detail("warning: %s", w)
		}
		if !report.OK() {
			for _, e := range report.Errors {
				info("  %s", e)
			}
			return fmt.Errorf("validation failed: %d error(s)", len(report.Errors))
		}

		result, err := client.Generate(cmd.Context())
		if err != nil {
			return err
		}

		if err := client.Write(result); err != nil {
			return err
		}

		for _, t := range result.Tags {
			info("  %s = %q", t.Variable, t.Version)
		}
		info("Wrote %d tag(s) to %s", len(result.Tags), client.Manifest().Project.Write)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
