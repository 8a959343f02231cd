// Package main provides the entry point for the lcindex CLI.
package main

import (
	"os"

	"github.com/lcindex/lcindex/cmd/lcindex/cmd"
	"github.com/lcindex/lcindex/internal/ixerrors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(ixerrors.ExitCode(err))
	}
}
