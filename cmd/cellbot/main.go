package main

import (
	"os"

	"github.com/msto63/cellbot/cmd/cellbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
