// Package logging builds the *slog.Logger the rest of editview is handed.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "EDITVIEW_LOG_FILE"

// New returns a debug-level text logger that appends to the file at path, and a func that closes it.
//
// If path is empty or can't be opened as a file, New returns a logger that discards everything (and a no-op close func).
func New(path string) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	if path == "" {
		return Discard(), noop
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Discard(), noop
	}

	w := &lockedWriter{w: f}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f.Close
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or Discard() if logger is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// lockedWriter serializes writes so concurrent records don't interleave within a single process.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
