package solver

import (
	"context"
	"math"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"gonum.org/v1/gonum/mat"
)

// DefaultLGSOptions are the linear Gauss-Seidel defaults.
var DefaultLGSOptions = LinearOptions{Atol: 1e-12, Rtol: 1e-10, MaxIter: 500}

// LGS is point Gauss-Seidel relaxation on the assembled operator. It is
// cheap for small, diagonally dominant systems and stalls otherwise.
type LGS struct {
	Options LinearOptions
}

func (*LGS) Kind() string { return KindLGS }

// Solve sweeps until ||b - A·x|| <= max(Atol, Rtol·||b||).
func (s *LGS) Solve(ctx context.Context, op Operator, b, x []float64) (LinearResult, error) {
	n := op.Size()
	if n == 0 {
		return LinearResult{}, nil
	}
	a, err := Assemble(op)
	if err != nil {
		return LinearResult{}, err
	}
	for i := 0; i < n; i++ {
		if a.At(i, i) == 0 {
			return LinearResult{}, mdoerr.ErrSingular
		}
	}

	tol := math.Max(s.Options.Atol, s.Options.Rtol*norm(b))
	r := make([]float64, n)
	mop := MatrixOperator{M: a}
	rnorm, _ := residual(mop, b, x, r)

	iter := 0
	for rnorm > tol && iter < s.Options.MaxIter {
		if err := ctx.Err(); err != nil {
			return LinearResult{Iterations: iter, Residual: rnorm}, err
		}
		iter++
		sweep(a, b, x)
		rnorm, _ = residual(mop, b, x, r)
		if !finite(rnorm) {
			break
		}
	}
	if !(rnorm <= tol) {
		return LinearResult{Iterations: iter, Residual: rnorm},
			&mdoerr.LinearSolverDivergenceError{Solver: KindLGS, Iterations: iter, Residual: rnorm}
	}
	return LinearResult{Iterations: iter, Residual: rnorm}, nil
}

func sweep(a *mat.Dense, b, x []float64) {
	n := len(x)
	for i := 0; i < n; i++ {
		s := b[i]
		for j := 0; j < n; j++ {
			if j != i {
				s -= a.At(i, j) * x[j]
			}
		}
		x[i] = s / a.At(i, i)
	}
}
