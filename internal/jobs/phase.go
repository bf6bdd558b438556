package jobs

import (
	"os/signal"

	"golang.org/x/sys/unix"
)

// Phase names which set of signal dispositions owns the process.
type Phase int32

const (
	PhaseNone Phase = iota
	PhaseInteractive
	PhaseForegroundChild
	PhaseBackgroundChild
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseInteractive:
		return "interactive"
	case PhaseForegroundChild:
		return "foreground-child"
	case PhaseBackgroundChild:
		return "background-child"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "none"
	}
}

// interactiveDispositions routes the toggle, interrupt and child signals to
// the manager's goroutines. SIGINT is caught rather than ignored so programs
// started from the shell begin with the default disposition.
func (m *Manager) interactiveDispositions() {
	signal.Notify(m.sigtstp, unix.SIGTSTP)
	signal.Notify(m.sigint, unix.SIGINT)
	signal.Notify(m.sigchld, unix.SIGCHLD)
}

// ApplyChild installs the dispositions for a freshly created child that is
// about to replace its image. Ignored signals survive exec; caught ones are
// reset to default by it.
func ApplyChild(background bool) Phase {
	signal.Ignore(unix.SIGTSTP)
	signal.Reset(unix.SIGCHLD)

	if background {
		signal.Ignore(unix.SIGINT)
		return PhaseBackgroundChild
	}

	signal.Reset(unix.SIGINT)
	return PhaseForegroundChild
}

// cleanupDispositions keeps the reaper running without output and makes the
// shell deaf to the SIGTERM it is about to broadcast to its process group.
func (m *Manager) cleanupDispositions() {
	m.quiet.Store(true)
	signal.Ignore(unix.SIGTERM)
}
