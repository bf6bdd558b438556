package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"smallsh/internal/clog"
	"smallsh/internal/config"
	"smallsh/internal/execute"
	"smallsh/internal/jobs"
	"smallsh/internal/parser"
	"smallsh/internal/prompt"
	"smallsh/internal/term"
)

// Shell is the interactive control loop: prompt, read, parse, then hand the
// command to a built-in or the launcher.
type Shell struct {
	jm       *jobs.Manager
	launcher *execute.Launcher
	scanner  *bufio.Scanner
	out      io.Writer
	cfg      *config.Configuration

	// broadcast delivers the shutdown signal to every process in the group.
	broadcast func() error

	exiting bool
}

type Option func(*Shell)

// WithInput replaces the terminal as the source of command lines.
func WithInput(r io.Reader) Option {
	return func(s *Shell) {
		s.scanner = parser.NewScanner(r, s.cfg.MaxLineLength)
	}
}

func New(jm *jobs.Manager, launcher *execute.Launcher, cfg *config.Configuration, opts ...Option) *Shell {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Shell{
		jm:        jm,
		launcher:  launcher,
		out:       term.Stdout(),
		cfg:       cfg,
		broadcast: terminateGroup,
	}
	s.scanner = parser.NewScanner(os.Stdin, cfg.MaxLineLength)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func terminateGroup() error {
	return unix.Kill(0, unix.SIGTERM)
}

// Run serves lines until exit or end of input, then tears the process group
// down. Reaper notices are held back from the moment the prompt is drawn
// until the line has been dispatched.
func (s *Shell) Run() {
	for !s.exiting {
		s.jm.Block()
		prompt.Out(s.out)

		if line, ok := s.read(); !ok {
			fmt.Fprintln(s.out)
			s.exiting = true
		} else if cmd := parser.ParseMax(line, s.cfg.MaxArgs); cmd != nil {
			clog.Debug("parsed %s", cmd)
			s.dispatch(cmd)
		}

		s.jm.Unblock()
		time.Sleep(s.cfg.Yield())
	}

	s.shutdown()
}

func (s *Shell) read() ([]byte, bool) {
	if s.scanner.Scan() {
		return s.scanner.Bytes(), true
	}

	if err := s.scanner.Err(); err != nil {
		term.Warn("read input: %v", err)
		clog.Warn("read input: %v", err)
	} else {
		clog.Info("end of input")
	}
	return nil, false
}

func (s *Shell) dispatch(cmd *execute.Command) {
	if builtin, ok := Builtins[cmd.Argv[0]]; ok {
		builtin.Main(s, cmd.Argv)
		return
	}

	s.launcher.Run(cmd)
}

// shutdown switches to cleanup dispositions, terminates everything else in
// the process group and gives the reaper a moment to collect it.
func (s *Shell) shutdown() {
	s.jm.Cleanup()

	if err := s.broadcast(); err != nil {
		clog.Warn("terminate process group: %v", err)
	}
	time.Sleep(s.cfg.ExitGrace())

	clog.Info("shell exiting")
}
