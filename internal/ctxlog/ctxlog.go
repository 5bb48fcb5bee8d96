// Package ctxlog carries the run's slog.Logger through context.Context so
// solvers, recorders and studies log with the attributes of their caller.
package ctxlog

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

// discard drops every record; used by Discard.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default when
// there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// Discard returns a context whose logger drops everything.
func Discard(ctx context.Context) context.Context {
	return WithLogger(ctx, discard)
}
