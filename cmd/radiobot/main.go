package main

import (
	"os"

	"github.com/kc1awv/Plugin-Collections/cmd/radiobot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
