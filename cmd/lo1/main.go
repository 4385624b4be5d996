package main

import (
	"os"

	"github.com/vivekkundariya/lo1/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
