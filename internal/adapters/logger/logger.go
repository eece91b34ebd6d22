// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/kcache/internal/core/ports"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing human-readable lines to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(newHandler(os.Stderr, false)),
		output: os.Stderr,
	}
}

func newHandler(w io.Writer, jsonMode bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetOutput updates the logger's output destination, keeping the current mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(newHandler(w, l.jsonMode))
}

// SetJSON switches between JSON and text logging.
// The output destination is preserved from SetOutput calls.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	w := l.output
	if w == nil {
		w = os.Stderr
	}
	l.logger = slog.New(newHandler(w, enable))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error. In JSON mode the error is attached as an attribute;
// in text mode the zerr chain is rendered as a "Caused by" list.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := collectErrorEntries(err)
	if l.jsonMode {
		attrs := make([]any, 0, 2)
		attrs = append(attrs, "error", err.Error())
		if meta := mergedMetadata(entries); len(meta) > 0 {
			attrs = append(attrs, "metadata", meta)
		}
		l.logger.Error("operation failed", attrs...)
		return
	}
	l.logger.Error(formatErrorEntries(entries))
}
