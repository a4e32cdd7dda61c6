package main

import (
	"os"

	"github.com/imp-refactor/imp-refactor/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
