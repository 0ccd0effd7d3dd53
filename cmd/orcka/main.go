package main

import (
	"os"

	"github.com/orckahq/orcka/cmd/orcka/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
