package main

import (
	"os"

	"github.com/terra-dev/terra/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
