package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest, bake files, and dependency graph",
	Long: `Runs every check in one pass: manifest schema, dependency graph (cycles
and unresolved references), referenced file existence, and required
external tools. All problems are reported together.
Exit 0 when only warnings are found; exit non-zero on errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		report := client.Validate()

		for _, w := range report.Warnings {
			info("  warning  %s", w)
		}
		for _, e := range report.Errors {
			info("  error    %s", e)
		}

		if !report.OK() {
			return fmt.Errorf("validation failed: %d error(s), %d warning(s)",
				len(report.Errors), len(report.Warnings))
		}

		info("Manifest is valid (%d warning(s)).", len(report.Warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
