package solver

import (
	"context"
	"math"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"gonum.org/v1/gonum/floats"
)

// DefaultGMRESOptions are the GMRES defaults.
var DefaultGMRESOptions = LinearOptions{Atol: 1e-12, Rtol: 1e-10, MaxIter: 200, Restart: 20}

// GMRES is restarted GMRES(m) using only operator-vector products. The
// Arnoldi basis is built with modified Gram-Schmidt and the least-squares
// problem is kept triangular with Givens rotations.
type GMRES struct {
	Options LinearOptions
}

// NewGMRES creates a GMRES solver with defaults filled in.
func NewGMRES(opts LinearOptions) *GMRES {
	return &GMRES{Options: opts.withDefaults(DefaultGMRESOptions)}
}

func (*GMRES) Kind() string { return KindGMRES }

// Solve solves op·x = b to max(Atol, Rtol·||b||).
func (g *GMRES) Solve(ctx context.Context, op Operator, b, x []float64) (LinearResult, error) {
	n := op.Size()
	if n == 0 {
		return LinearResult{}, nil
	}
	logger := ctxlog.FromContext(ctx)

	bnorm := norm(b)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return LinearResult{}, nil
	}
	tol := math.Max(g.Options.Atol, g.Options.Rtol*bnorm)

	m := min(g.Options.Restart, n)
	v := make([][]float64, m+1)
	for i := range v {
		v[i] = make([]float64, n)
	}
	h := make([][]float64, m+1)
	for i := range h {
		h[i] = make([]float64, m)
	}
	cs := make([]float64, m)
	sn := make([]float64, m)
	gv := make([]float64, m+1)
	y := make([]float64, m)
	r := make([]float64, n)
	w := make([]float64, n)

	total := 0
	rnorm, err := residual(op, b, x, r)
	if err != nil {
		return LinearResult{}, err
	}

	for rnorm > tol && total < g.Options.MaxIter {
		if err := ctx.Err(); err != nil {
			return LinearResult{Iterations: total, Residual: rnorm}, err
		}

		floats.ScaleTo(v[0], 1/rnorm, r)
		for i := range gv {
			gv[i] = 0
		}
		gv[0] = rnorm

		k := 0
		for j := 0; j < m && total < g.Options.MaxIter; j++ {
			total++
			if err := op.Apply(w, v[j]); err != nil {
				return LinearResult{Iterations: total, Residual: rnorm}, err
			}
			for i := 0; i <= j; i++ {
				h[i][j] = floats.Dot(w, v[i])
				floats.AddScaled(w, -h[i][j], v[i])
			}
			h[j+1][j] = norm(w)
			breakdown := h[j+1][j] <= 1e-14*math.Max(1, math.Abs(h[j][j]))
			if !breakdown {
				floats.ScaleTo(v[j+1], 1/h[j+1][j], w)
			}

			for i := 0; i < j; i++ {
				h[i][j], h[i+1][j] = cs[i]*h[i][j]+sn[i]*h[i+1][j], -sn[i]*h[i][j]+cs[i]*h[i+1][j]
			}
			cs[j], sn[j] = givens(h[j][j], h[j+1][j])
			h[j][j] = cs[j]*h[j][j] + sn[j]*h[j+1][j]
			h[j+1][j] = 0
			gv[j+1] = -sn[j] * gv[j]
			gv[j] = cs[j] * gv[j]

			k = j + 1
			if math.Abs(gv[j+1]) <= tol || breakdown {
				break
			}
		}

		// back substitution on the k×k triangle
		scale := 0.0
		for i := 0; i < k; i++ {
			for l := i; l < k; l++ {
				scale = math.Max(scale, math.Abs(h[i][l]))
			}
		}
		for i := k - 1; i >= 0; i-- {
			if math.Abs(h[i][i]) <= 1e-14*scale {
				return LinearResult{Iterations: total, Residual: rnorm}, mdoerr.ErrSingular
			}
			s := gv[i]
			for l := i + 1; l < k; l++ {
				s -= h[i][l] * y[l]
			}
			y[i] = s / h[i][i]
		}
		for i := 0; i < k; i++ {
			floats.AddScaled(x, y[i], v[i])
		}

		prev := rnorm
		if rnorm, err = residual(op, b, x, r); err != nil {
			return LinearResult{Iterations: total, Residual: prev}, err
		}
		logger.Debug("GMRES cycle.", "iter", total, "residual", rnorm)
		if !finite(rnorm) {
			break
		}
		if rnorm > tol && rnorm >= prev {
			// a full cycle without progress will not improve on restart
			break
		}
	}

	if !(rnorm <= tol) {
		return LinearResult{Iterations: total, Residual: rnorm},
			&mdoerr.LinearSolverDivergenceError{Solver: KindGMRES, Iterations: total, Residual: rnorm}
	}
	return LinearResult{Iterations: total, Residual: rnorm}, nil
}

// givens returns the rotation zeroing b in (a, b).
func givens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	r := math.Hypot(a, b)
	return a / r, b / r
}
