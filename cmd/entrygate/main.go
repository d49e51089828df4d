package main

import (
	"os"

	"github.com/entrygate/entrygate/cmd/entrygate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
