package execute

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"smallsh/internal/clog"
	"smallsh/internal/jobs"
	"smallsh/internal/term"
)

const (
	devNull = "/dev/null"

	StatusPrefix = "Last foreground process status: "
)

// StatusLine renders r the way the status built-in reports it.
func StatusLine(r jobs.Result) string {
	return StatusPrefix + r.String()
}

// Launcher starts external programs and remembers how the last foreground
// one ended.
type Launcher struct {
	jm   *jobs.Manager
	self string

	stdin, stdout, stderr *os.File

	last jobs.Result
}

type Option func(*Launcher)

// WithStdio sets the streams foreground children inherit.
func WithStdio(stdin, stdout, stderr *os.File) Option {
	return func(l *Launcher) {
		l.stdin, l.stdout, l.stderr = stdin, stdout, stderr
	}
}

func NewLauncher(jm *jobs.Manager, opts ...Option) (*Launcher, error) {
	self, err := selfExecutable()
	if err != nil {
		return nil, fmt.Errorf("locate shell executable: %w", err)
	}

	l := &Launcher{
		jm:     jm,
		self:   self,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

func selfExecutable() (string, error) {
	const procSelf = "/proc/self/exe"
	if _, err := os.Stat(procSelf); err == nil {
		return procSelf, nil
	}
	return os.Executable()
}

// Last returns how the most recent foreground command ended.
func (l *Launcher) Last() jobs.Result {
	return l.last
}

// Run starts cmd. Background commands are left running; foreground ones are
// waited for and their result recorded. While foreground-only mode is on,
// every command runs in the foreground.
func (l *Launcher) Run(cmd *Command) {
	if err := cmd.Validate(); err != nil {
		term.Error("%v", err)
		return
	}

	background := cmd.Background && !l.jm.ForegroundOnly()
	clog.Debug("launch %s (background=%v)", cmd, background)

	stdin := l.stdin
	if cmd.InFile != "" || background {
		name := streamName(cmd.InFile)
		f, err := os.Open(name)
		if err != nil {
			term.Error("Could not open file %s for input: %v", name, cause(err))
			l.last = jobs.Result{Kind: jobs.Exited, Code: 1}
			return
		}
		defer func() { _ = f.Close() }()
		stdin = f
	}

	stdout := l.stdout
	if cmd.OutFile != "" || background {
		name := streamName(cmd.OutFile)
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			term.Error("Could not open file %s for output: %v", name, cause(err))
			l.last = jobs.Result{Kind: jobs.Exited, Code: 1}
			return
		}
		defer func() { _ = f.Close() }()
		stdout = f
	}

	pid, err := syscall.ForkExec(l.self, childArgv(cmd.Argv, background, term.ColorMode()), &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{stdin.Fd(), stdout.Fd(), l.stderr.Fd()},
	})
	if err != nil {
		term.Error("fork failed: %v", err)
		clog.Error("fork %s: %v", cmd.Argv[0], err)
		return
	}

	if background {
		term.Printf("Background PID %d\n", pid)
		return
	}

	res, err := wait(pid)
	if err != nil {
		term.Error("wait for %d: %v", pid, err)
		clog.Error("wait %d: %v", pid, err)
		return
	}
	l.last = res
	clog.Debug("foreground %d finished: %s", pid, res)

	if res.Kind == jobs.Signaled {
		term.Printf("\n%s\n", StatusLine(res))
	}
}

// streamName resolves a redirection target; only background commands reach
// here without one.
func streamName(path string) string {
	if path == "" {
		return devNull
	}
	return path
}

// cause strips the operation and path from err so messages read like
// perror(3) output.
func cause(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

// wait blocks until pid terminates. A child stopped before it could ignore
// SIGTSTP is resumed rather than left holding the prompt.
func wait(pid int) (jobs.Result, error) {
	for {
		var ws unix.WaitStatus
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return jobs.Result{}, err
		}
		if res, ok := jobs.ResultOf(ws); ok {
			return res, nil
		}
		if ws.Stopped() {
			clog.Debug("foreground %d stopped by signal %d, resuming", pid, ws.StopSignal())
			if err := unix.Kill(pid, unix.SIGCONT); err != nil {
				return jobs.Result{}, err
			}
		}
	}
}
