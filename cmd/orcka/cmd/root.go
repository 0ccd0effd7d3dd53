package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	manifestPath string
	parserMode   string
	verbose      bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "orcka",
	Short: "Deterministic content-addressed tags for container build targets",
	Long: `orcka computes a deterministic, content-addressed version tag for every
build target declared in a manifest. Tags chain through the dependency
graph, so a change in a base image's inputs rolls every derived image's
tag, while untouched targets keep their tags and stay cached.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case verbose:
			log.SetLevel(log.DebugLevel)
		case quiet:
			log.SetLevel(log.ErrorLevel)
		default:
			log.SetLevel(log.InfoLevel)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orcka %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "orcka.yaml", "path to manifest file")
	rootCmd.PersistentFlags().StringVar(&parserMode, "parser", "strict", "bake file parser: strict or fallback")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
