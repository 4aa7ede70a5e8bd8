package memgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with memgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStrategy adds the active strategy name to the logger.
func (l *Logger) WithStrategy(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", name),
	}
}

// LogInitialize logs an arena initialization.
func (l *Logger) LogInitialize(words int, err error) {
	if err != nil {
		l.Error("initialize failed",
			"words", words,
			"error", err,
		)
	} else {
		l.Debug("arena initialized",
			"words", words,
		)
	}
}

// LogAllocate logs an allocation attempt.
func (l *Logger) LogAllocate(sizeBytes, words, offset int, fit bool) {
	if fit {
		l.Debug("allocate completed",
			"size_bytes", sizeBytes,
			"words", words,
			"offset", offset,
		)
	} else {
		l.Debug("allocate found no fit",
			"size_bytes", sizeBytes,
			"words", words,
		)
	}
}

// LogFree logs a free. known reports whether the address matched a live
// allocation.
func (l *Logger) LogFree(offset int, known bool) {
	if known {
		l.Debug("free completed",
			"offset", offset,
		)
	} else {
		l.Debug("free ignored unknown address",
			"offset", offset,
		)
	}
}
