package prompt

import (
	"fmt"
	"io"
)

const Prompt = ": "

const (
	EnterForegroundOnly = "Entering foreground-only mode (& is now ignored)"
	ExitForegroundOnly  = "Exiting foreground-only mode"
)

// Notices are written from the signal goroutine, so they are prepared once
// and handed to write(2) as-is.
var (
	EnterNotice = notice(EnterForegroundOnly)
	ExitNotice  = notice(ExitForegroundOnly)
)

// notice puts msg on its own line and redraws the prompt the user was
// looking at when the signal arrived.
func notice(msg string) []byte {
	return []byte("\n" + msg + "\n" + Prompt)
}

func Out(w io.Writer) {
	fmt.Fprint(w, Prompt)
}
