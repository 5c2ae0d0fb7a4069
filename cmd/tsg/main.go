package main

import (
	"os"

	"github.com/dd0wney/cluso-tsg/cmd/tsg/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
