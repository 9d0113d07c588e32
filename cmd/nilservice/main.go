// Command nilservice is a sample CLI exercising every engine this module
// exposes, generalizing the original C++ project's sandbox program
// (echo loop with alternating-tag publishing, ready/connect/disconnect
// logging) into a set of cobra subcommands.
package main

import (
	"os"

	"github.com/momentics/nilservice/cmd/nilservice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
