package main

import (
	"os"

	"github.com/plumber-cd/ez-masters/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
