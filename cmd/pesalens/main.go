package main

import (
	"os"

	"github.com/pesalens/pesalens/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
