package jobs

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"smallsh/internal/clog"
	"smallsh/internal/prompt"
)

var ErrStarted = errors.New("job manager already started")

const (
	backgroundPID = "Background PID "
	isDone        = " is done: "
)

// Manager owns the process-wide job-control state: the foreground-only flag,
// the active signal phase and the reaper for finished background children.
//
// Notices are written with write(2) straight to fd from fixed buffers; the
// goroutines that produce them never allocate or take a lock the main flow
// could be holding, except the gate around reaping.
type Manager struct {
	fd int

	// gate is held by the main flow while it prompts, reads, parses and
	// dispatches, and by the reaper while it collects children.
	gate sync.Mutex

	foregroundOnly atomic.Bool
	quiet          atomic.Bool
	phase          atomic.Int32

	sigtstp chan os.Signal
	sigint  chan os.Signal
	sigchld chan os.Signal
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// NewManager returns a manager that writes its notices to fd.
func NewManager(fd int) *Manager {
	return &Manager{
		fd: fd,
		// One slot each: pending deliveries of the same signal coalesce.
		sigtstp: make(chan os.Signal, 1),
		sigint:  make(chan os.Signal, 1),
		sigchld: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Start enters the interactive phase and launches the signal goroutines.
func (m *Manager) Start() error {
	if m.started {
		return ErrStarted
	}
	m.started = true

	m.interactiveDispositions()
	m.phase.Store(int32(PhaseInteractive))

	m.wg.Add(2)
	go m.toggleLoop()
	go m.reapLoop()

	clog.Debug("job manager started, notices on fd %d", m.fd)
	return nil
}

// Stop unregisters every signal and waits for the goroutines to exit.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	signal.Stop(m.sigtstp)
	signal.Stop(m.sigint)
	signal.Stop(m.sigchld)
	close(m.done)
	m.wg.Wait()
	m.started = false
}

// Cleanup switches to the shutdown phase.
func (m *Manager) Cleanup() {
	m.cleanupDispositions()
	m.phase.Store(int32(PhaseCleanup))
	clog.Debug("job manager entering cleanup")
}

func (m *Manager) Phase() Phase {
	return Phase(m.phase.Load())
}

func (m *Manager) ForegroundOnly() bool {
	return m.foregroundOnly.Load()
}

// Block holds back child notifications until Unblock.
func (m *Manager) Block() {
	m.gate.Lock()
}

func (m *Manager) Unblock() {
	m.gate.Unlock()
}

// Toggle flips foreground-only mode and announces the new mode.
func (m *Manager) Toggle() {
	if m.foregroundOnly.Load() {
		m.foregroundOnly.Store(false)
		m.write(prompt.ExitNotice)
		return
	}
	m.foregroundOnly.Store(true)
	m.write(prompt.EnterNotice)
}

// Reap collects every child that has already terminated, announcing each
// one unless the manager is in cleanup. It never blocks and returns the
// number of children collected. Callers must hold the gate if the main flow
// may be waiting on a specific child.
func (m *Manager) Reap() int {
	var buf [96]byte
	n := 0

	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		// ECHILD or pid 0: nothing left that has exited.
		if err != nil || pid <= 0 {
			return n
		}
		n++

		res, ok := ResultOf(ws)
		if !ok || m.quiet.Load() {
			continue
		}

		line := append(buf[:0], backgroundPID...)
		line = AppendInt(line, pid)
		line = append(line, isDone...)
		line = res.AppendTo(line)
		line = append(line, '\n')
		m.write(line)
	}
}

func (m *Manager) toggleLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case <-m.sigtstp:
			m.Toggle()
			clog.Debug("foreground-only mode now %v", m.ForegroundOnly())
		case <-m.sigint:
			// The shell itself survives interrupts.
		}
	}
}

func (m *Manager) reapLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case <-m.sigchld:
			m.gate.Lock()
			n := m.Reap()
			m.gate.Unlock()
			if n > 0 {
				clog.Debug("reaped %d background children", n)
			}
		}
	}
}

func (m *Manager) write(b []byte) {
	for len(b) > 0 {
		n, err := unix.Write(m.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return
		}
		b = b[n:]
	}
}
