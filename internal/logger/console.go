// Package logger provides console output for padcount runs.
//
// Two kinds of line are written. Contract lines (the rename announcement on
// standard output and per-file errors on standard error) are always written
// in a fixed format with no timestamp. Diagnostic lines are leveled, carry a
// [HH:MM:SS] timestamp and go to standard error only when the configured
// level allows it.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// DefaultLevel is used when no level, or an unknown one, is configured.
const DefaultLevel = "warn"

// Stats counts what a ConsoleLogger has reported.
type Stats struct {
	Renames int
	Errors  int
}

// ConsoleLogger writes rename progress to out and errors and diagnostics to
// errOut. It is safe for concurrent use.
// Level tags of diagnostic lines are colored when errOut is a terminal;
// contract lines are never colored.
type ConsoleLogger struct {
	out      io.Writer
	errOut   io.Writer
	logLevel string
	mutex    sync.Mutex
	stats    Stats

	colorErr bool
	scheme   *colorScheme
}

// NewConsoleLogger creates a ConsoleLogger. A nil writer discards its lines.
// logLevel is one of trace, debug, info, warn, error (case-insensitive);
// anything else selects DefaultLevel.
func NewConsoleLogger(out, errOut io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		out:      out,
		errOut:   errOut,
		logLevel: normalizeLogLevel(logLevel),
		colorErr: isTerminal(errOut),
		scheme:   newColorScheme(),
	}
}

// isTerminal reports whether w is a terminal that should get colors.
// Returns false when NO_COLOR is set (fatih/color clears color.NoColor then).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return DefaultLevel
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	return l == "" || normalizeLogLevel(l) == l
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelWarn
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// Level returns the effective log level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// Stats returns counts of the contract lines written so far.
func (cl *ConsoleLogger) Stats() Stats {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	return cl.stats
}

// LogRename announces a rename on the output writer.
// Format: "Will rename <old> -> <new>" ("Would rename" for dry runs)
func (cl *ConsoleLogger) LogRename(oldPath, newPath string, dryRun bool) {
	verb := "Will"
	if dryRun {
		verb = "Would"
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.stats.Renames++

	if cl.out == nil {
		return
	}
	fmt.Fprintf(cl.out, "%s rename %s -> %s\n", verb, oldPath, newPath)
}

// LogFileError reports a recoverable per-file failure on the error writer.
// Format: "Error: <message> @ <path>"
func (cl *ConsoleLogger) LogFileError(err error, path string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.stats.Errors++

	if cl.errOut == nil {
		return
	}
	fmt.Fprintf(cl.errOut, "Error: %v @ %s\n", err, path)
}

// LogSummary logs run totals at INFO level.
// Format: "[HH:MM:SS] [INFO] <n> rename(s), <m> error(s) in <duration>"
func (cl *ConsoleLogger) LogSummary(duration time.Duration) {
	stats := cl.Stats()
	cl.LogInfo(fmt.Sprintf("%d rename(s), %d error(s) in %s",
		stats.Renames, stats.Errors, duration.Round(time.Millisecond)))
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.errOut == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorErr {
		level = cl.scheme.forLevel(level).Sprint(level)
	}
	fmt.Fprintf(cl.errOut, "[%s] [%s] %s\n", ts, level, message)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}
