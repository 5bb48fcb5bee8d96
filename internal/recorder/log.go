package recorder

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Log writes runs to a structured logger. Iterations go to Debug, run
// boundaries to Info and failures to Warn.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a recorder writing to logger. A nil logger means the one
// carried by each call's context.
func NewLog(logger *slog.Logger) *Log { return &Log{logger: logger} }

func (l *Log) from(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return ctxlog.FromContext(ctx)
}

func (l *Log) Start(ctx context.Context, info Info) error {
	l.from(ctx).Info("Run started.", "case", info.Case, "variables", len(info.Variables))
	return nil
}

func (l *Log) Iteration(ctx context.Context, it solver.Iteration) error {
	system := it.System
	if system == "" {
		system = "<root>"
	}
	l.from(ctx).Debug("Solver iteration.", "system", system, "solver", it.Solver, "iter", it.Iter, "norm", it.Norm, "status", it.Status)
	return nil
}

func (l *Log) Finish(ctx context.Context, c Case) error {
	if c.Failed() {
		l.from(ctx).Warn("Run failed.", "case", c.Name, "status", c.Status, "iterations", c.Iterations, "duration", c.Duration, "error", c.Error)
		return nil
	}
	l.from(ctx).Info("Run finished.", "case", c.Name, "status", c.Status, "iterations", c.Iterations, "duration", c.Duration)
	return nil
}

func (*Log) Close() error { return nil }
