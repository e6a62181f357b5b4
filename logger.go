package mvbtree

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with mvbtree-specific context.
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

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, key int64, existed, inPlace bool) {
	l.DebugContext(ctx, "insert completed",
		"key", key,
		"existed", existed,
		"in_place", inPlace,
	)
}

// LogErase logs an erase operation.
func (l *Logger) LogErase(ctx context.Context, key int64, existed bool) {
	l.DebugContext(ctx, "erase completed",
		"key", key,
		"existed", existed,
	)
}

// LogRangeQuery logs a range query.
func (l *Logger) LogRangeQuery(ctx context.Context, lo, hi int64, count int) {
	l.DebugContext(ctx, "range query completed",
		"lo", lo,
		"hi", hi,
		"count", count,
	)
}

// LogSnapshot logs a snapshot lifecycle event.
func (l *Logger) LogSnapshot(ctx context.Context, event string, id uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+event+" failed",
			"snapshot_id", id,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+event,
			"snapshot_id", id,
		)
	}
}

// LogCheckpoint logs a checkpoint operation.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"name", name,
		)
	}
}

// LogRestore logs a state restore operation.
func (l *Logger) LogRestore(ctx context.Context, source string, clock uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"source", source,
			"clock", clock,
		)
	}
}
