package solver

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"gonum.org/v1/gonum/mat"
)

// Direct assembles the operator and solves it with a dense LU factorization.
type Direct struct{}

func (*Direct) Kind() string { return KindDirect }

// Solve factorizes and solves. Singular or badly conditioned operators
// return mdoerr.ErrSingular.
func (*Direct) Solve(_ context.Context, op Operator, b, x []float64) (LinearResult, error) {
	n := op.Size()
	if n == 0 {
		return LinearResult{}, nil
	}
	a, err := Assemble(op)
	if err != nil {
		return LinearResult{}, err
	}

	var lu mat.LU
	lu.Factorize(a)
	dst := mat.NewVecDense(n, x)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		return LinearResult{Iterations: 1}, fmt.Errorf("%w: %v", mdoerr.ErrSingular, err)
	}

	r := make([]float64, n)
	rnorm, err := residual(op, b, x, r)
	if err != nil {
		return LinearResult{Iterations: 1}, err
	}
	return LinearResult{Iterations: 1, Residual: rnorm}, nil
}
