package main

import (
	"os"

	"github.com/bave/unp7m/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
