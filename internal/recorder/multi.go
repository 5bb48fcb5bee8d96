package recorder

import (
	"context"
	"errors"

	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Multi forwards every call to each of its recorders in order. All of them
// are called even when one fails; the errors are joined.
type Multi []Recorder

func (m Multi) Start(ctx context.Context, info Info) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Start(ctx, info))
	}
	return errors.Join(errs...)
}

func (m Multi) Iteration(ctx context.Context, it solver.Iteration) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Iteration(ctx, it))
	}
	return errors.Join(errs...)
}

func (m Multi) Finish(ctx context.Context, c Case) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Finish(ctx, c))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
