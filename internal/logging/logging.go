// Package logging builds the command-line logger.
//
// Warnings and errors always go to the log file. Verbosity only controls
// what is echoed to stderr; it never changes what is extracted.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	// File receives warnings and errors. Nil disables file logging.
	File io.Writer

	// Console receives messages selected by Verbosity. Nil disables it.
	Console io.Writer

	// Verbosity is 0 (console silent), 1 (info) or 2 (debug).
	Verbosity int
}

// New returns a logger writing to the destinations in opts.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if level, ok := ConsoleLevel(opts.Verbosity); ok && opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{Level: level}))
	}
	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler)
	case 1:
		return slog.New(handlers[0])
	default:
		return slog.New(slogmulti.Fanout(handlers...))
	}
}

// ConsoleLevel maps a verbosity to the lowest level echoed to the console.
// It returns false when nothing should be echoed.
func ConsoleLevel(verbosity int) (slog.Level, bool) {
	switch {
	case verbosity <= 0:
		return 0, false
	case verbosity == 1:
		return slog.LevelInfo, true
	default:
		return slog.LevelDebug, true
	}
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
