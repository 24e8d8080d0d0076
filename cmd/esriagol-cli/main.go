// Package main provides the entry point for esriagol-cli.
//
// esriagol-cli administers a running gateway over its admin API:
// registering proxied services and managing client keys.
package main

import (
	"fmt"
	"os"

	"github.com/msjade/esriagol/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
