package shell

import (
	"fmt"
	"os"

	"github.com/pborman/getopt/v2"

	"smallsh/internal/execute"
	"smallsh/internal/term"
)

// Builtins holds the commands the shell runs itself instead of launching.
var Builtins = make(map[string]Builtin)

type Builtin interface {
	Main(s *Shell, argv []string) int
}

type BuiltinFunc func(s *Shell, argv []string) int

func (f BuiltinFunc) Main(s *Shell, argv []string) int {
	return f(s, argv)
}

var _ Builtin = (BuiltinFunc)(nil)

// helpRequested handles -h/--help for a built-in. Anything getopt cannot
// parse is left to the built-in as plain arguments, so "cd -x" still names a
// directory.
func helpRequested(s *Shell, argv []string, usage, summary string) (rest []string, stop bool) {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(argv, nil); err != nil {
		return argv[1:], false
	}
	if *helpOpt {
		fmt.Fprintln(s.out, "usage:", usage)
		fmt.Fprintln(s.out, summary)
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Options:")
		opts.PrintOptions(s.out)
		return nil, true
	}

	return opts.Args(), false
}

// Cd changes the working directory to its argument, or to $HOME without one.
func Cd(s *Shell, argv []string) int {
	args, stop := helpRequested(s, argv, "cd [DIR]", "Change the working directory, $HOME by default.")
	if stop {
		return 1
	}

	dir := os.Getenv("HOME")
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.Chdir(dir); err != nil {
		term.Error("Path not found: %v", err)
		return 1
	}
	return 0
}

// Status prints how the last foreground command ended.
func Status(s *Shell, argv []string) int {
	if _, stop := helpRequested(s, argv, "status", "Show the exit value or terminating signal of the last foreground command."); stop {
		return 1
	}

	fmt.Fprintln(s.out, execute.StatusLine(s.launcher.Last()))
	return 0
}

// Exit ends the loop; Run then terminates the rest of the process group.
// Arguments never keep the shell alive.
func Exit(s *Shell, argv []string) int {
	s.exiting = true
	helpRequested(s, argv, "exit", "Terminate every process started by the shell and exit.")
	return 0
}

func init() {
	Builtins["cd"] = BuiltinFunc(Cd)
	Builtins["status"] = BuiltinFunc(Status)
	Builtins["exit"] = BuiltinFunc(Exit)
}
