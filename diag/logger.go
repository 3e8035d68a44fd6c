// File: diag/logger.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Levelled stderr logger used by the example binaries and by LogSink.

package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level controls output verbosity.
type Level int

const (
	LevelQuiet   Level = 0
	LevelNormal  Level = 1
	LevelVerbose Level = 2
	LevelDebug   Level = 3
)

// Logger writes levelled messages with optional timestamps. Safe for
// concurrent use; the event loop and observer goroutines may share one.
type Logger struct {
	level      Level
	mu         sync.Mutex
	output     io.Writer
	timestamps bool
}

// NewLogger returns a Logger printing messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	return &Logger{
		level:      Level(verbosity),
		output:     os.Stderr,
		timestamps: verbosity >= 3,
	}
}

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.output = w
	l.mu.Unlock()
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) {
	l.mu.Lock()
	l.timestamps = on
	l.mu.Unlock()
}

// Level returns the configured verbosity.
func (l *Logger) Level() Level { return l.level }

// Info prints when verbosity >= 1. Prefixed with [INF].
func (l *Logger) Info(format string, args ...any) {
	if l.level >= LevelNormal {
		l.write("INF", format, args...)
	}
}

// Warn prints when verbosity >= 1. Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...any) {
	if l.level >= LevelNormal {
		l.write("WRN", format, args...)
	}
}

// Verbose prints when verbosity >= 2. Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...any) {
	if l.level >= LevelVerbose {
		l.write("VRB", format, args...)
	}
}

// Debug prints when verbosity >= 3. Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...any) {
	if l.level >= LevelDebug {
		l.write("DBG", format, args...)
	}
}

// Error always prints regardless of verbosity. Prefixed with [ERR].
func (l *Logger) Error(format string, args ...any) {
	l.write("ERR", format, args...)
}

func (l *Logger) write(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.timestamps {
		ts := time.Now().Format("15:04:05.000")
		fmt.Fprintf(l.output, "%s [%s] %s\n", ts, level, msg)
	} else {
		fmt.Fprintf(l.output, "[%s] %s\n", level, msg)
	}
}
