package main

import (
	"os"

	"github.com/ipwatch/internal/cli/commands"
)

func main() {
	if err := commands.NewRootCommand(commands.NewEnv()).Execute(); err != nil {
		// cobra has already printed the error to stderr.
		os.Exit(1)
	}
}
