// Command pasc is the CLI entry point for the interpreter.
package main

import (
	"os"

	"github.com/cwbudde/pasc/cmd/pasc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
