// Package main is the entry point for the forecastfolio command line tool.
package main

import (
	"os"

	"github.com/aristath/forecastfolio/cmd/forecastfolio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
