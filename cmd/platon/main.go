// Package main provides the entry point for the platon CLI.
package main

import (
	"os"

	"github.com/elenchus/platon/cmd/platon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
