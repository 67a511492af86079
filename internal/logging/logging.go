// Package logging builds the leveled structured logger used across ipwatch.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
	Prefix string
	// ReportTimestamp adds an RFC3339 timestamp to each entry.
	ReportTimestamp bool
}

// ParseLevel converts a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New creates a logger with the given options.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return New(Options{Output: io.Discard, Level: "error"})
}
