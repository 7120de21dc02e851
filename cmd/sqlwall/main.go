// Package main provides the sqlwall command.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlwall/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
