package solver

import (
	"context"
	"math"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
)

// DefaultNLGSOptions are the nonlinear Gauss-Seidel defaults.
var DefaultNLGSOptions = Options{Atol: 1e-4, Rtol: 1e-10, MaxIter: 20, Relax: 1}

// NLGS is nonlinear Gauss-Seidel: full sweeps in a fixed order, each child
// seeing the freshest upstream values, until connection-carried values stop
// changing.
type NLGS struct {
	Options Options
}

func (*NLGS) Kind() string     { return KindNLGS }
func (*NLGS) Iterative() bool  { return true }
func (*NLGS) OwnsStates() bool { return false }

// Solve sweeps until the largest change of a carried value is within
// Atol (absolute) or Rtol (relative).
func (s *NLGS) Solve(ctx context.Context, sys System) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("system", sys.Path(), "solver", KindNLGS)
	expired := deadline(ctx, s.Options.Timeout)

	prev := sys.Carried(nil)
	cur := make([]float64, 0, len(prev))
	res := Result{Status: Iterating, Norm0: math.Inf(1), Norm: math.Inf(1)}

	for iter := 1; iter <= s.Options.MaxIter; iter++ {
		if err := expired(); err != nil {
			res.Status = Diverged
			return res, &mdoerr.ConvergenceError{Group: sys.Path(), Iterations: res.Iterations, Metric: res.Norm, Reason: err.Error()}
		}
		if err := sys.Sweep(ctx); err != nil {
			res.Status = Failed
			return res, err
		}
		res.Iterations = iter

		cur = sys.Carried(cur[:0])
		abs, rel := change(prev, cur)
		res.Norm = abs
		if iter == 1 {
			res.Norm0 = abs
		}
		logger.Debug("Gauss-Seidel sweep.", "iter", iter, "norm", abs, "rel", rel)

		if !finite(abs) {
			res.Status = Diverged
			sys.Record(ctx, Iteration{System: sys.Path(), Solver: KindNLGS, Iter: iter, Norm: abs, Status: res.Status})
			return res, &mdoerr.ConvergenceError{Group: sys.Path(), Iterations: iter, Metric: abs, Reason: "non-finite change"}
		}
		if abs <= s.Options.Atol || rel <= s.Options.Rtol {
			res.Status = Converged
			sys.Record(ctx, Iteration{System: sys.Path(), Solver: KindNLGS, Iter: iter, Norm: abs, Status: res.Status})
			logger.Debug("Gauss-Seidel converged.", "iter", iter, "norm", abs)
			return res, nil
		}
		sys.Record(ctx, Iteration{System: sys.Path(), Solver: KindNLGS, Iter: iter, Norm: abs, Status: res.Status})
		prev, cur = cur, prev
	}

	res.Status = Diverged
	logger.Warn("Gauss-Seidel did not converge.", "iter", res.Iterations, "norm", res.Norm)
	return res, &mdoerr.ConvergenceError{Group: sys.Path(), Iterations: res.Iterations, Metric: res.Norm, Reason: "iteration limit reached"}
}

// change returns the largest absolute and relative difference between two
// snapshots of carried values.
func change(prev, cur []float64) (abs, rel float64) {
	for i := range cur {
		d := math.Abs(cur[i] - prev[i])
		if math.IsNaN(d) {
			return math.NaN(), math.NaN()
		}
		abs = math.Max(abs, d)
		if scale := math.Abs(cur[i]); scale > 0 {
			rel = math.Max(rel, d/scale)
		} else if d > 0 {
			rel = math.Inf(1)
		}
	}
	return abs, rel
}
