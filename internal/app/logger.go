package app

import (
	"io"
	"log/slog"
)

// newLogger builds the run's logger without touching slog.Default, so tests
// can run several apps side by side. NewConfig has already validated level
// and format; an unparsable level still falls back to info.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
