package main

import (
	"os"

	"smallsh/internal/cli"
	"smallsh/internal/execute"
	"smallsh/internal/term"
)

func main() {
	// Children launched by the shell re-enter here and become their program.
	if execute.Init() {
		return
	}

	if err := cli.Execute(); err != nil {
		term.Error("%v", err)
		os.Exit(1)
	}
}
