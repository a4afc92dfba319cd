// Package main is the entry point for the sld CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/sld/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
