package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// nonsymmetric is a well-conditioned, diagonally dominant 5×5 matrix.
var nonsymmetric = mat.NewDense(5, 5, []float64{
	10, -1, 2, 0, 0,
	-1, 11, -1, 3, 0,
	2, -1, 10, -1, 1,
	0, 3, -1, 8, -2,
	1, 0, 1, -2, 9,
})

var rhs = []float64{6, 25, -11, 15, 3}

func reference(t *testing.T) []float64 {
	t.Helper()
	var x mat.VecDense
	require.NoError(t, x.SolveVec(nonsymmetric, mat.NewVecDense(5, append([]float64(nil), rhs...))))
	return x.RawVector().Data
}

func TestLinearSolversAgree(t *testing.T) {
	want := reference(t)

	testCases := []struct {
		name   string
		solver Linear
	}{
		{"gmres", NewGMRES(LinearOptions{})},
		{"gmres with short restart", NewGMRES(LinearOptions{Restart: 2, MaxIter: 500})},
		{"direct", &Direct{}},
		{"lgs", &LGS{Options: DefaultLGSOptions}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			x := make([]float64, 5)

			// --- Act ---
			res, err := tc.solver.Solve(context.Background(), MatrixOperator{M: nonsymmetric}, rhs, x)

			// --- Assert ---
			require.NoError(t, err)
			if diff := cmp.Diff(want, x, cmpopts.EquateApprox(0, 1e-8)); diff != "" {
				t.Errorf("solution mismatch (-want +got):\n%s", diff)
			}
			assert.LessOrEqual(t, res.Residual, 1e-8)
		})
	}
}

func TestGMRESZeroRHS(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	res, err := NewGMRES(LinearOptions{}).Solve(context.Background(), MatrixOperator{M: nonsymmetric}, make([]float64, 5), x)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 5), x)
	assert.Zero(t, res.Iterations)
}

func TestLinearFailures(t *testing.T) {
	singular := MatrixOperator{M: mat.NewDense(2, 2, []float64{1, 2, 2, 4})}

	t.Run("direct singular", func(t *testing.T) {
		_, err := (&Direct{}).Solve(context.Background(), singular, []float64{1, 1}, make([]float64, 2))
		assert.ErrorIs(t, err, mdoerr.ErrSingular)
	})

	t.Run("gmres inconsistent singular system", func(t *testing.T) {
		_, err := NewGMRES(LinearOptions{}).Solve(context.Background(), singular, []float64{1, 0}, make([]float64, 2))
		require.Error(t, err)
		assert.True(t, errors.Is(err, mdoerr.ErrSingular) || mdoerr.IsNotConverged(err), "got %v", err)
	})

	t.Run("lgs zero diagonal", func(t *testing.T) {
		op := MatrixOperator{M: mat.NewDense(2, 2, []float64{0, 1, 1, 0})}
		_, err := (&LGS{Options: DefaultLGSOptions}).Solve(context.Background(), op, []float64{1, 1}, make([]float64, 2))
		assert.ErrorIs(t, err, mdoerr.ErrSingular)
	})

	t.Run("lgs stalls on a non-dominant matrix", func(t *testing.T) {
		op := MatrixOperator{M: mat.NewDense(2, 2, []float64{1, 3, 3, 1})}
		_, err := (&LGS{Options: LinearOptions{Atol: 1e-12, Rtol: 1e-12, MaxIter: 50}}).Solve(context.Background(), op, []float64{1, 2}, make([]float64, 2))

		var div *mdoerr.LinearSolverDivergenceError
		require.True(t, errors.As(err, &div), "got %v", err)
		assert.Equal(t, "lgs", div.Solver)
	})

	t.Run("gmres iteration cap", func(t *testing.T) {
		_, err := NewGMRES(LinearOptions{MaxIter: 1, Restart: 1, Atol: 1e-14, Rtol: 1e-14}).Solve(context.Background(), MatrixOperator{M: nonsymmetric}, rhs, make([]float64, 5))

		var div *mdoerr.LinearSolverDivergenceError
		require.True(t, errors.As(err, &div), "got %v", err)
		assert.Equal(t, 1, div.Iterations)
	})
}

func TestAssemble(t *testing.T) {
	a, err := Assemble(MatrixOperator{M: nonsymmetric})
	require.NoError(t, err)
	assert.True(t, mat.Equal(nonsymmetric, a))
}
