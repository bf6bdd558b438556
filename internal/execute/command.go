package execute

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyCommand = errors.New("empty command")

// Command is one parsed line: a program, its arguments, optional redirections
// and whether it asked to run in the background. Empty InFile or OutFile
// means the stream is inherited.
type Command struct {
	Argv            []string
	InFile, OutFile string
	Background      bool
}

func (cmd *Command) Validate() error {
	if len(cmd.Argv) == 0 || cmd.Argv[0] == "" {
		return ErrEmptyCommand
	}
	return nil
}

func (cmd *Command) String() string {
	in, out := cmd.InFile, cmd.OutFile
	if in == "" {
		in = "-"
	}
	if out == "" {
		out = "-"
	}
	return fmt.Sprintf("argv=[%s] in=%s out=%s bg=%t", strings.Join(cmd.Argv, " "), in, out, cmd.Background)
}
