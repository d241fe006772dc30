package main

import (
	"os"

	"liverroi/cmd/liverroi/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
