package cmd

import (
	"fmt"

	"github.com/orckahq/orcka/pkg/orcka"
)

// newClient loads the manifest and bake files with the flag-selected parser.
func newClient() (*orcka.Client, error) {
	client, err := orcka.New(orcka.Options{
		ManifestPath: manifestPath,
		ParserMode:   parserMode,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}
