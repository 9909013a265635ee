// Package logging builds the structured logger shared by every command.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/huangsam/stationsync/schema"
)

const appName = "stationsync"

// New returns a logger writing to w. Text output is colorized with tint
// unless noColor is set; JSON output is meant for schedulers and log shippers.
func New(w io.Writer, level slog.Level, format schema.LogFormat, noColor bool) *slog.Logger {
	if format == schema.JSONLog {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
		return slog.New(h).With("app", appName)
	}

	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
	return slog.New(h)
}

// Component derives a logger tagged with the subsystem name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With("component", name)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
