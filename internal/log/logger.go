// Package log wraps log/slog with the verbosity levels used by the CLI.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: filter result counts, publish outcomes
	LevelDebug        // -vv: API calls, retries, ignored matches
	LevelTrace        // -vvv: per-issue weighting details
)

const slogLevelTrace = slog.Level(-8)

var (
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger with the specified verbosity level
func Initialize(level int, w io.Writer) {
	verbosity = level

	var slogLevel slog.Level
	switch {
	case level >= LevelTrace:
		slogLevel = slogLevelTrace
	case level >= LevelDebug:
		slogLevel = slog.LevelDebug
	case level >= LevelInfo:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelWarn
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	}))
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if verbosity >= LevelInfo {
		logger.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if verbosity >= LevelDebug {
		logger.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if verbosity >= LevelTrace {
		logger.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Entry is a logger bound to one configuration entry. Entries run
// concurrently, so every line carries the entry key.
type Entry struct {
	key string
}

// ForEntry returns a logger that tags every record with the entry key.
func ForEntry(key string) Entry {
	return Entry{key: key}
}

func (e Entry) args(args []any) []any {
	return append([]any{"entry", e.key}, args...)
}

// Info logs at info level with the entry key.
func (e Entry) Info(msg string, args ...any) { Info(msg, e.args(args)...) }

// Debug logs at debug level with the entry key.
func (e Entry) Debug(msg string, args ...any) { Debug(msg, e.args(args)...) }

// Trace logs at trace level with the entry key.
func (e Entry) Trace(msg string, args ...any) { Trace(msg, e.args(args)...) }

// Warn logs at warn level with the entry key.
func (e Entry) Warn(msg string, args ...any) { Warn(msg, e.args(args)...) }

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return verbosity >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return verbosity >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return verbosity >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	return verbosity
}

func init() {
	verbosity = LevelQuiet
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
