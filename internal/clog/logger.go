package clog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes leveled, timestamped lines tagged with a session id.
type Logger struct {
	mu        sync.Mutex
	level     Level
	session   string
	out       io.Writer // receives every line at or above level
	errMirror io.Writer // receives warn/error lines as well, nil to disable
}

// NewLogger returns a logger at Info level with no outputs attached.
func NewLogger() *Logger {
	return &Logger{level: LevelInfo}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) SetErrMirror(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errMirror = w
}

// SetSession tags every following line with id.
func (l *Logger) SetSession(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = id
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || (l.out == nil && l.errMirror == nil) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.out != nil {
		ts := time.Now().UTC().Format(time.RFC3339)
		if l.session != "" {
			_, _ = fmt.Fprintf(l.out, "%s %s [%s] %s\n", ts, l.session, level, msg)
		} else {
			_, _ = fmt.Fprintf(l.out, "%s [%s] %s\n", ts, level, msg)
		}
	}

	if l.errMirror != nil && level >= LevelWarn {
		_, _ = fmt.Fprintf(l.errMirror, "[%s] %s\n", level, msg)
	}
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}
