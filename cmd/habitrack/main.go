// Package main is the entry point for the HabiTrack server CLI.
package main

import (
	"fmt"
	"os"

	"github.com/crvarsha0102/HabiTrack/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
