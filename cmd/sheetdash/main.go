// Package main provides the CLI entry point for sheetdash.
package main

import (
	"os"

	"github.com/ukaji3/sheetdash-go/internal/console"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		cliErr := console.Classify(err)
		console.NewPrinter(colorsEnabled()).FormatError(cliErr)
		os.Exit(cliErr.ExitCode)
	}
}
