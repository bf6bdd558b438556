// Package term writes the messages a user sees at the prompt when something
// goes wrong. Operational logging lives in internal/clog.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	mu        sync.Mutex
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	colorMode           = ColorAuto

	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

// SetColorMode selects when messages are colorized. Unknown modes mean auto.
func SetColorMode(mode string) {
	mu.Lock()
	defer mu.Unlock()
	colorMode = mode
}

func ColorMode() string {
	mu.Lock()
	defer mu.Unlock()
	return colorMode
}

func shouldColor() bool {
	switch colorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return !color.NoColor
	}
}

func paint(c *color.Color, msg string) string {
	if !shouldColor() {
		return msg
	}
	c.EnableColor()
	return c.Sprint(msg)
}

// SetOutput replaces the stdout writer; nil restores os.Stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	stdout = w
}

// SetErrOutput replaces the stderr writer; nil restores os.Stderr.
func SetErrOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	stderr = w
}

func Printf(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(stdout, format, a...)
}

// Error writes "Error. <msg>" to stderr.
func Error(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, a...)
	_, _ = fmt.Fprintf(stderr, "%s %s\n", paint(errColor, "Error."), msg)
}

// Warn writes "Warning. <msg>" to stderr.
func Warn(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, a...)
	_, _ = fmt.Fprintf(stderr, "%s %s\n", paint(warnColor, "Warning."), msg)
}

func Stdout() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return stdout
}

func Stderr() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return stderr
}

// Reset restores the default writers and color mode.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	stdout = os.Stdout
	stderr = os.Stderr
	colorMode = ColorAuto
}
