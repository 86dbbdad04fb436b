// Package klog builds the kernel's slog loggers and carries them through
// context.Context.
package klog

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"hartos/hal"
)

type key struct{}

var loggerKey = key{}

// New creates a logger writing to w. level is one of debug, info, warn or
// error; format is "json" or "text".
func New(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LineWriter adapts a hal.Logger to io.Writer. Writes are split on newlines;
// a trailing partial line is held until completed or flushed.
type LineWriter struct {
	mu  sync.Mutex
	l   hal.Logger
	buf []byte
}

// NewLineWriter returns a writer emitting one hal log line per text line.
func NewLineWriter(l hal.Logger) *LineWriter {
	return &LineWriter{l: l}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			w.l.WriteLineBytes(w.buf)
			w.buf = w.buf[:0]
			continue
		}
		w.buf = append(w.buf, b)
	}
	return len(p), nil
}

// Flush emits a pending partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.l.WriteLineBytes(w.buf)
		w.buf = w.buf[:0]
	}
}
