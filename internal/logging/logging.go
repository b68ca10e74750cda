// Package logging builds the structured loggers used by every component.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a [log.Logger] writing to w, or stderr when w is nil. Verbose
// loggers also report debug messages.
func New(w io.Writer, verbose bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// With creates a child [log.Logger] with the key-value pairs added to all
// entries.
func With(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// ForRun returns a child logger tagged with a fresh run ID, and the ID.
func ForRun(l *log.Logger) (*log.Logger, string) {
	id := NewRunID()
	return l.With("run", id), id
}

// NewRunID generates a new v4 [uuid.UUID] as a string.
func NewRunID() string {
	return uuid.New().String()
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
