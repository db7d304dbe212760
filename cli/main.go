package main

import (
	"os"

	"github.com/migforge/migforge/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
