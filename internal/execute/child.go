package execute

import (
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"smallsh/internal/jobs"
	"smallsh/internal/term"
)

// childArg0 marks an invocation of the shell binary as a child on its way to
// becoming the requested program.
const childArg0 = "smallsh-child"

const (
	modeForeground = "fg"
	modeBackground = "bg"
)

// childArgv builds the trampoline command line: marker, fg|bg, the color
// mode for error messages, then the program's own argv.
func childArgv(argv []string, background bool, colorMode string) []string {
	mode := modeForeground
	if background {
		mode = modeBackground
	}
	return append([]string{childArg0, mode, colorMode}, argv...)
}

// Init must be the first thing main (and TestMain) calls. In a process
// started by a Launcher it installs the child dispositions and replaces the
// image with the requested program; it never returns there. Anywhere else it
// returns false.
func Init() bool {
	if len(os.Args) == 0 || os.Args[0] != childArg0 {
		return false
	}
	if len(os.Args) < 4 {
		os.Exit(1)
	}

	term.SetColorMode(os.Args[2])
	runChild(os.Args[1] == modeBackground, os.Args[3:])
	return true
}

func runChild(background bool, argv []string) {
	jobs.ApplyChild(background)

	path, err := exec.LookPath(argv[0])
	if errors.Is(err, exec.ErrDot) {
		err = nil
	}
	if err == nil {
		err = unix.Exec(path, argv, os.Environ())
	}

	term.Error("Command %s not found: %v", argv[0], err)
	os.Exit(1)
}
