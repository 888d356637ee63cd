package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level is the CLI verbosity, set by repeating -v.
type Level int

// Verbosity levels
const (
	LevelQuiet Level = iota // Default: only errors and warnings
	LevelInfo               // -v: per-category outcomes, counts
	LevelDebug              // -vv: remote calls, tolerated failures
	LevelTrace              // -vvv: per-item details
)

const slogLevelTrace = slog.Level(-8)

func (l Level) slogLevel() slog.Level {
	switch {
	case l >= LevelTrace:
		return slogLevelTrace
	case l >= LevelDebug:
		return slog.LevelDebug
	case l >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// String returns the level name as printed by `nudge config show`.
func (l Level) String() string {
	switch {
	case l >= LevelTrace:
		return "trace"
	case l >= LevelDebug:
		return "debug"
	case l >= LevelInfo:
		return "info"
	default:
		return "quiet"
	}
}

var (
	mu         sync.Mutex
	verbosity  Level
	logger     *slog.Logger
	output     io.Writer
	inProgress bool // an unterminated progress line is on screen
)

// Initialize sets up the global logger with the specified verbosity level.
func Initialize(level Level, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = level
	output = w
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slogLevel()}))
}

// Discard silences all output, including warnings. Used while the
// progress display owns the terminal.
func Discard() {
	Initialize(LevelQuiet, io.Discard)
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	logAt(LevelInfo, slog.LevelInfo, msg, args)
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	logAt(LevelDebug, slog.LevelDebug, msg, args)
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	logAt(LevelTrace, slogLevelTrace, msg, args)
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	logAt(LevelQuiet, slog.LevelWarn, msg, args)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	logAt(LevelQuiet, slog.LevelError, msg, args)
}

func logAt(min Level, level slog.Level, msg string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if verbosity < min {
		return
	}
	clearProgress()
	logger.Log(context.Background(), level, msg, args...)
}

// Progress prints a progress message with carriage return (no newline).
// Only shown at info level or higher.
func Progress(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r"+format, args...)
	}
}

// ProgressDone completes a progress line with "done" and newline.
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// clearProgress keeps log records from overwriting a progress line.
// Callers hold mu.
func clearProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool { return Verbosity() >= LevelInfo }

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool { return Verbosity() >= LevelDebug }

// Verbosity returns the current verbosity level
func Verbosity() Level {
	mu.Lock()
	defer mu.Unlock()
	return verbosity
}

func init() {
	output = os.Stderr
	verbosity = LevelQuiet
	logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
