package solver

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func linearResidual(a, b, s0 float64) *funcSystem {
	return &funcSystem{
		x0: []float64{s0},
		residual: func(x, f []float64) error {
			f[0] = a*x[0] + b
			return nil
		},
		jacobian: func([]float64) *mat.Dense { return mat.NewDense(1, 1, []float64{a}) },
	}
}

func TestNewtonLinearResidualOneIteration(t *testing.T) {
	for _, kind := range []string{KindGMRES, KindDirect, KindLGS} {
		for _, s0 := range []float64{-1e3, -1, 0, 0.5, 42, 1e6} {
			// --- Arrange ---
			lin, err := NewLinear(kind, LinearOptions{})
			require.NoError(t, err)
			solver, err := NewNonlinear(KindNewton, Options{}, lin)
			require.NoError(t, err)
			sys := linearResidual(3, -7, s0)

			// --- Act ---
			res, err := solver.Solve(context.Background(), sys)

			// --- Assert ---
			require.NoError(t, err, "kind %s guess %g", kind, s0)
			assert.Equal(t, Converged, res.Status)
			assert.Equal(t, 1, res.Iterations, "kind %s guess %g", kind, s0)
			assert.InDelta(t, 7.0/3.0, sys.last[0], 1e-8)
		}
	}
}

func TestNewtonAlreadyConverged(t *testing.T) {
	sys := linearResidual(2, -4, 2)
	solver, err := NewNonlinear(KindNewton, Options{}, nil)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background(), sys)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, Converged, res.Status)
}

func TestNewtonNoRealRoot(t *testing.T) {
	for _, s0 := range []float64{0.5, 1, 3, -2} {
		// --- Arrange ---
		sys := &funcSystem{
			x0: []float64{s0},
			residual: func(x, f []float64) error {
				f[0] = x[0]*x[0] + 1
				return nil
			},
			jacobian: func(x []float64) *mat.Dense { return mat.NewDense(1, 1, []float64{2 * x[0]}) },
		}
		solver, err := NewNonlinear(KindNewton, Options{MaxIter: 30}, NewGMRES(LinearOptions{}))
		require.NoError(t, err)

		// --- Act ---
		res, err := solver.Solve(context.Background(), sys)

		// --- Assert ---
		require.Error(t, err)
		assert.True(t, mdoerr.IsNotConverged(err))
		assert.Contains(t, []Status{Diverged, Failed}, res.Status)
		assert.NotEqual(t, Converged, sys.records[len(sys.records)-1].Status)
		assert.LessOrEqual(t, res.Iterations, 30)
	}
}

func TestNewtonSystem(t *testing.T) {
	// x^2 + y^2 = 4, x = y  ->  x = y = sqrt(2)
	build := func() *funcSystem {
		return &funcSystem{
			x0: []float64{1, 0.5},
			residual: func(x, f []float64) error {
				f[0] = x[0]*x[0] + x[1]*x[1] - 4
				f[1] = x[0] - x[1]
				return nil
			},
			jacobian: func(x []float64) *mat.Dense {
				return mat.NewDense(2, 2, []float64{2 * x[0], 2 * x[1], 1, -1})
			},
		}
	}

	for _, kind := range []string{KindGMRES, KindDirect} {
		t.Run(kind, func(t *testing.T) {
			lin, err := NewLinear(kind, LinearOptions{})
			require.NoError(t, err)
			sys := build()

			res, err := (&Newton{Options: DefaultNewtonOptions, Linear: lin}).Solve(context.Background(), sys)

			require.NoError(t, err)
			assert.Equal(t, Converged, res.Status)
			assert.InDelta(t, math.Sqrt2, sys.last[0], 1e-9)
			assert.InDelta(t, math.Sqrt2, sys.last[1], 1e-9)
			assert.Less(t, res.Iterations, 10)
		})
	}
}

func TestNewtonFailures(t *testing.T) {
	t.Run("compute error fails the solve", func(t *testing.T) {
		boom := &mdoerr.ComputeError{Component: "pod.motor", Variable: "current", Err: mdoerr.ErrNonFinite}
		sys := linearResidual(1, 1, 0)
		sys.residual = func(x, f []float64) error { return boom }

		res, err := NewNewtonForTest().Solve(context.Background(), sys)

		assert.Equal(t, Failed, res.Status)
		var failed *mdoerr.FailedError
		require.True(t, errors.As(err, &failed))
		assert.Equal(t, "test", failed.Group)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("singular jacobian fails the solve", func(t *testing.T) {
		sys := linearResidual(0, 1, 0)
		lin, _ := NewLinear(KindDirect, LinearOptions{})

		res, err := (&Newton{Options: DefaultNewtonOptions, Linear: lin}).Solve(context.Background(), sys)

		assert.Equal(t, Failed, res.Status)
		assert.ErrorIs(t, err, mdoerr.ErrSingular)
	})

	t.Run("timeout diverges", func(t *testing.T) {
		sys := linearResidual(1, 1, 0)
		sys.residual = func(x, f []float64) error {
			time.Sleep(2 * time.Millisecond)
			f[0] = x[0]*x[0] + 1
			return nil
		}
		sys.jacobian = func(x []float64) *mat.Dense { return mat.NewDense(1, 1, []float64{2*x[0] + 1}) }
		solver := &Newton{Options: Options{Atol: 1e-12, Rtol: 1e-12, MaxIter: 1 << 20, Timeout: time.Millisecond, Relax: 1}, Linear: NewGMRES(LinearOptions{})}

		res, err := solver.Solve(context.Background(), sys)

		require.Error(t, err)
		assert.Contains(t, []Status{Diverged, Failed}, res.Status)
		assert.Less(t, res.Iterations, 100)
	})
}

func NewNewtonForTest() *Newton {
	return &Newton{Options: DefaultNewtonOptions, Linear: NewGMRES(LinearOptions{})}
}

// contraction builds the loop y = 0.5*x + c, x = y as two chained assignments.
func contraction(c, x0 float64) *funcSystem {
	sys := &funcSystem{carried: []float64{x0, 0}}
	sys.sweep = func(v []float64) error {
		v[1] = 0.5*v[0] + c // first component reads the fed-back x
		v[0] = v[1]         // second component sees the fresh y
		return nil
	}
	return sys
}

func TestNLGSContraction(t *testing.T) {
	for _, x0 := range []float64{-100, -1, 0, 3, 250} {
		// --- Arrange ---
		sys := contraction(1, x0)
		solver, err := NewNonlinear(KindNLGS, Options{Atol: 1e-8, MaxIter: 100}, nil)
		require.NoError(t, err)

		// --- Act ---
		res, err := solver.Solve(context.Background(), sys)

		// --- Assert ---
		require.NoError(t, err, "guess %g", x0)
		assert.Equal(t, Converged, res.Status)
		assert.InDelta(t, 2.0, sys.carried[0], 1e-7)
		assert.LessOrEqual(t, res.Iterations, 50)

		norms := sys.norms()
		for i := 2; i < len(norms); i++ {
			assert.True(t, norms[i] < norms[i-1] || norms[i] <= 1e-8, "metric must decrease: %v", norms)
		}
	}
}

func TestNLGSNonContraction(t *testing.T) {
	sys := &funcSystem{carried: []float64{1}}
	sys.sweep = func(v []float64) error {
		v[0] = 2*v[0] + 1
		return nil
	}

	res, err := (&NLGS{Options: DefaultNLGSOptions}).Solve(context.Background(), sys)

	var ce *mdoerr.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 20, ce.Iterations)
	assert.Equal(t, Diverged, res.Status)
	assert.Greater(t, ce.Metric, 1e4)
}

func TestNLGSTimeout(t *testing.T) {
	// --- Arrange ---
	sys := &funcSystem{carried: []float64{0}}
	sys.sweep = func(v []float64) error {
		time.Sleep(2 * time.Millisecond)
		v[0]++
		return nil
	}
	s := &NLGS{Options: Options{Atol: 1e-12, Rtol: 1e-12, MaxIter: 1 << 20, Timeout: time.Millisecond, Relax: 1}}

	// --- Act ---
	res, err := s.Solve(context.Background(), sys)

	// --- Assert ---
	var ce *mdoerr.ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "test", ce.Group)
	assert.Contains(t, ce.Reason, "timeout")
	assert.Equal(t, Diverged, res.Status)
	assert.True(t, mdoerr.IsNotConverged(err))
	assert.Less(t, res.Iterations, 1000)
}

func TestTightened(t *testing.T) {
	lin := NewGMRES(LinearOptions{})

	nlgs := Tightened(&NLGS{Options: DefaultNLGSOptions}, 1e-10, 1e-12, 500)
	newton := Tightened(&Newton{Options: Options{Atol: 1e-14, Rtol: 1e-6, MaxIter: 900, Relax: 0.5}, Linear: lin}, 1e-10, 1e-12, 500)
	once := &RunOnce{}

	assert.Equal(t, Options{Atol: 1e-10, Rtol: 1e-12, MaxIter: 500, Relax: 1}, nlgs.(*NLGS).Options)
	assert.Equal(t, Options{Atol: 1e-14, Rtol: 1e-12, MaxIter: 900, Relax: 0.5}, newton.(*Newton).Options)
	assert.Same(t, lin, newton.(*Newton).Linear)
	assert.Same(t, once, Tightened(once, 1e-10, 1e-12, 500))
	assert.Equal(t, 1e-4, DefaultNLGSOptions.Atol, "the original options are untouched")
}

func TestNLGSNoCoupling(t *testing.T) {
	calls := 0
	sys := &funcSystem{sweep: func([]float64) error { calls++; return nil }}

	res, err := (&NLGS{Options: DefaultNLGSOptions}).Solve(context.Background(), sys)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Iterations)
}

func TestRunOnce(t *testing.T) {
	calls := 0
	sys := &funcSystem{sweep: func([]float64) error { calls++; return nil }}

	res, err := (&RunOnce{}).Solve(context.Background(), sys)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Converged, res.Status)
}

func TestAllocators(t *testing.T) {
	assert.Equal(t, []string{"newton", "nlgs", "run_once"}, NonlinearKinds())
	assert.Equal(t, []string{"direct", "gmres", "lgs"}, LinearKinds())

	_, err := NewNonlinear("broyden", Options{}, nil)
	assert.ErrorContains(t, err, "unknown nonlinear solver kind 'broyden'")
	_, err = NewLinear("cg", LinearOptions{})
	assert.ErrorContains(t, err, "unknown linear solver kind 'cg'")

	s, err := NewNonlinear(KindNLGS, Options{MaxIter: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, Options{Atol: 1e-4, Rtol: 1e-10, MaxIter: 7, Relax: 1}, s.(*NLGS).Options)
	assert.True(t, s.Iterative())
	assert.False(t, s.OwnsStates())
}
