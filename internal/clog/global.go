package clog

import (
	"io"
)

var std = NewLogger()

// Configure points the global logger at logPath (no file logging when empty),
// sets its level and tags it with session.
func Configure(logPath string, level Level, session string) error {
	std.SetLevel(level)
	std.SetSession(session)

	if logPath == "" {
		return nil
	}

	f, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	std.SetOutput(f)

	return nil
}

// MirrorErrors copies warn and error lines to w as well; nil stops it.
func MirrorErrors(w io.Writer) {
	std.SetErrMirror(w)
}

func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

func Info(format string, args ...any) {
	std.Info(format, args...)
}

func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

func Error(format string, args ...any) {
	std.Error(format, args...)
}

// Close closes the file behind the global logger, if any.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if closer, ok := std.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Reset restores the global logger to its zero configuration.
func Reset() {
	std = NewLogger()
}

// TestLogger returns a debug-level logger writing everything to w.
func TestLogger(w io.Writer) *Logger {
	l := NewLogger()
	l.SetOutput(w)
	l.SetLevel(LevelDebug)
	return l
}

// ReplaceGlobal swaps the global logger and returns the previous one.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}
