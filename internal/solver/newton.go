package solver

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"gonum.org/v1/gonum/floats"
)

// DefaultNewtonOptions are the Newton defaults.
var DefaultNewtonOptions = Options{Atol: 1e-10, Rtol: 1e-10, MaxIter: 50, Relax: 1}

// Newton solves F(x) = 0 over the system's unknowns. Each iteration solves
// J·Δx = −F with Linear and updates x ← x + Relax·Δx.
type Newton struct {
	Options Options
	Linear  Linear
}

func (*Newton) Kind() string     { return KindNewton }
func (*Newton) Iterative() bool  { return true }
func (*Newton) OwnsStates() bool { return true }

// Solve runs the Newton state machine. Convergence is ||F|| <= Atol or
// ||F|| <= Rtol·||F0||.
func (s *Newton) Solve(ctx context.Context, sys System) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("system", sys.Path(), "solver", KindNewton)
	expired := deadline(ctx, s.Options.Timeout)

	n := sys.Unknowns()
	x := make([]float64, n)
	f := make([]float64, n)
	dx := make([]float64, n)
	rhs := make([]float64, n)
	sys.Guess(x)

	res := Result{Status: Initialized}
	record := func() {
		sys.Record(ctx, Iteration{System: sys.Path(), Solver: KindNewton, Iter: res.Iterations, Norm: res.Norm, Status: res.Status})
	}
	fail := func(err error) (Result, error) {
		res.Status = Failed
		record()
		logger.Warn("Newton failed.", "iter", res.Iterations, "norm", res.Norm, "error", err)
		return res, &mdoerr.FailedError{Group: sys.Path(), Iterations: res.Iterations, Norm: res.Norm, Err: err}
	}
	diverge := func(reason string) (Result, error) {
		res.Status = Diverged
		record()
		logger.Warn("Newton diverged.", "iter", res.Iterations, "norm", res.Norm, "reason", reason)
		return res, &mdoerr.DivergedError{Group: sys.Path(), Iterations: res.Iterations, Norm: res.Norm, Reason: reason}
	}

	if err := sys.Evaluate(ctx, x, f); err != nil {
		return fail(err)
	}
	res.Status = Iterating
	res.Norm0 = norm(f)
	res.Norm = res.Norm0
	logger.Debug("Newton start.", "unknowns", n, "norm", res.Norm0)
	if !finite(res.Norm) {
		return diverge("non-finite residual")
	}
	if s.converged(res) {
		res.Status = Converged
		record()
		return res, nil
	}
	record()

	for res.Iterations < s.Options.MaxIter {
		if err := expired(); err != nil {
			return diverge(err.Error())
		}
		res.Iterations++

		op, err := sys.Linearize(ctx)
		if err != nil {
			return fail(err)
		}
		for i := range f {
			rhs[i] = -f[i]
			dx[i] = 0
		}
		if _, err := s.Linear.Solve(ctx, op, rhs, dx); err != nil {
			return fail(fmt.Errorf("linear solve: %w", err))
		}
		floats.AddScaled(x, s.Options.Relax, dx)

		if err := sys.Evaluate(ctx, x, f); err != nil {
			return fail(err)
		}
		res.Norm = norm(f)
		logger.Debug("Newton iteration.", "iter", res.Iterations, "norm", res.Norm)

		if !finite(res.Norm) {
			return diverge("non-finite residual")
		}
		if s.converged(res) {
			res.Status = Converged
			record()
			logger.Debug("Newton converged.", "iter", res.Iterations, "norm", res.Norm)
			return res, nil
		}
		record()
	}
	return diverge("iteration limit reached")
}

func (s *Newton) converged(r Result) bool {
	return r.Norm <= s.Options.Atol || r.Norm <= s.Options.Rtol*r.Norm0
}

func norm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}
