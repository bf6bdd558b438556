package jobs

import "golang.org/x/sys/unix"

type Kind int

const (
	Exited Kind = iota
	Signaled
)

const (
	exitValue          = "exit value "
	terminatedBySignal = "terminated by signal "
)

// Result is how a child ended: its exit code, or the signal that killed it.
type Result struct {
	Kind Kind
	Code int
}

// ResultOf classifies a wait status. It reports false for statuses that are
// not terminations (stopped, continued).
func ResultOf(ws unix.WaitStatus) (Result, bool) {
	switch {
	case ws.Exited():
		return Result{Kind: Exited, Code: ws.ExitStatus()}, true
	case ws.Signaled():
		return Result{Kind: Signaled, Code: int(ws.Signal())}, true
	}
	return Result{}, false
}

// AppendTo appends "exit value <n>" or "terminated by signal <n>" to buf
// without going through fmt.
func (r Result) AppendTo(buf []byte) []byte {
	if r.Kind == Signaled {
		buf = append(buf, terminatedBySignal...)
	} else {
		buf = append(buf, exitValue...)
	}
	return AppendInt(buf, r.Code)
}

func (r Result) String() string {
	var b [48]byte
	return string(r.AppendTo(b[:0]))
}

// AppendInt appends the decimal form of v to buf. It extracts digits by hand
// so the signal goroutines can format numbers into fixed buffers.
func AppendInt(buf []byte, v int) []byte {
	if v == 0 {
		return append(buf, '0')
	}

	n := uint64(v)
	if v < 0 {
		buf = append(buf, '-')
		n = uint64(-(v + 1)) + 1
	}

	var digits [20]byte
	i := len(digits)
	for n != 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}

	return append(buf, digits[i:]...)
}
