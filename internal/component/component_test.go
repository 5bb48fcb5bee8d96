package component

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square: y = x^2, linearized by finite differences.
type square struct{}

func (square) Declare(d *variable.Declarations) error {
	if err := d.Param("x", 3, "m", ""); err != nil {
		return err
	}
	return d.Output("y", 0, "m**2", "")
}

func (square) Compute(in Reader, out Writer) error {
	out.SetFloat("y", in.Float("x")*in.Float("x"))
	return nil
}

// wave: y = x*sin(x), linearized by complex step.
type wave struct{ square }

func (wave) Compute(in Reader, out Writer) error {
	x := in.Float("x")
	out.SetFloat("y", x*math.Sin(x))
	return nil
}

func (wave) ComputeComplex(in ComplexReader, out ComplexWriter) error {
	x := in.Float("x")
	out.SetFloat("y", x*cmplx.Sin(x))
	return nil
}

// affine: residual r = a*s + b with analytic partials.
type affine struct{}

func (affine) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("a", 2, "", ""),
		d.Param("b", -4, "", ""),
		d.State("s", 0, "", ""),
		d.Output("twice", 0, "", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (affine) Compute(in Reader, out Writer) error {
	out.SetFloat("twice", 2*in.Float("s"))
	return nil
}

func (affine) ComputeResiduals(in, states Reader, res Writer) error {
	res.SetFloat("s", in.Float("a")*states.Float("s")+in.Float("b"))
	return nil
}

func (affine) Linearize(in, states Reader, jac *Jacobian) error {
	jac.Set("twice", "s", 2)
	jac.Set("s", "a", states.Float("s"))
	jac.Set("s", "b", 1)
	jac.Set("s", "s", in.Float("a"))
	return nil
}

// affineFD is affine without analytic partials.
type affineFD struct{}

func (affineFD) Declare(d *variable.Declarations) error       { return affine{}.Declare(d) }
func (affineFD) Compute(in Reader, out Writer) error          { return affine{}.Compute(in, out) }
func (affineFD) ComputeResiduals(in, st Reader, r Writer) error { return affine{}.ComputeResiduals(in, st, r) }
func (affineFD) FDSettings() FDSettings                       { return FDSettings{Step: 1e-7, Central: true} }

type funcComp struct {
	compute func(in Reader, out Writer) error
}

func (funcComp) Declare(d *variable.Declarations) error {
	if err := d.Param("x", 1, "", ""); err != nil {
		return err
	}
	return d.Output("y", 0, "", "")
}

func (f funcComp) Compute(in Reader, out Writer) error { return f.compute(in, out) }

func declare(t *testing.T, c Component) *variable.Declarations {
	t.Helper()
	d := variable.NewDeclarations("test.comp")
	require.NoError(t, c.Declare(d))
	return d
}

func TestEvaluate(t *testing.T) {
	t.Run("computes outputs and residuals", func(t *testing.T) {
		// --- Arrange ---
		d := declare(t, affine{})
		in, states, out, res := Buffers(d)
		states["s"][0] = 5

		// --- Act ---
		err := Evaluate("test.comp", affine{}, in, states, out, res)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, 10.0, out["twice"][0])
		assert.Equal(t, 6.0, res["s"][0])
		assert.Equal(t, 5.0, states["s"][0], "states must not be modified")
	})

	t.Run("compute is repeatable", func(t *testing.T) {
		d := declare(t, wave{})
		in, st, out1, _ := Buffers(d)
		_, _, out2, _ := Buffers(d)
		require.NoError(t, Evaluate("w", wave{}, in, st, out1, nil))
		require.NoError(t, Evaluate("w", wave{}, in, st, out2, nil))
		assert.Equal(t, out1, out2)
	})

	testCases := []struct {
		name    string
		compute func(in Reader, out Writer) error
		varName string
		target  error
	}{
		{
			name: "domain error names variable",
			compute: func(in Reader, out Writer) error {
				return DomainError("x", "sqrt of negative value %g", -1.0)
			},
			varName: "x",
		},
		{
			name: "non-finite output",
			compute: func(in Reader, out Writer) error {
				out.SetFloat("y", math.Sqrt(-in.Float("x")))
				return nil
			},
			varName: "y",
			target:  mdoerr.ErrNonFinite,
		},
		{
			name: "undeclared read",
			compute: func(in Reader, out Writer) error {
				out.SetFloat("y", in.Float("z"))
				return nil
			},
			varName: "z",
		},
		{
			name: "wrong vector size",
			compute: func(in Reader, out Writer) error {
				out.SetVec("y", []float64{1, 2})
				return nil
			},
		},
		{
			name: "plain error",
			compute: func(in Reader, out Writer) error {
				return errors.New("division by zero")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := funcComp{compute: tc.compute}
			d := declare(t, c)
			in, st, out, _ := Buffers(d)

			err := Evaluate("pod.motor", c, in, st, out, nil)

			var ce *mdoerr.ComputeError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, "pod.motor", ce.Component)
			assert.Equal(t, tc.varName, ce.Variable)
			assert.True(t, errors.Is(err, mdoerr.ErrCompute))
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestLinearize(t *testing.T) {
	t.Run("finite difference", func(t *testing.T) {
		d := declare(t, square{})
		in, st, _, _ := Buffers(d)

		jac, err := Linearize("sq", square{}, d, in, st)

		require.NoError(t, err)
		assert.Equal(t, FiniteDiff, MethodOf(square{}))
		assert.InDelta(t, 6.0, jac.At("y", "x"), 1e-5)
		assert.Equal(t, 3.0, in["x"][0], "inputs must be restored")
	})

	t.Run("complex step is exact", func(t *testing.T) {
		d := declare(t, wave{})
		in, st, _, _ := Buffers(d)

		jac, err := Linearize("w", wave{}, d, in, st)

		require.NoError(t, err)
		assert.Equal(t, ComplexStep, MethodOf(wave{}))
		x := 3.0
		assert.InDelta(t, math.Sin(x)+x*math.Cos(x), jac.At("y", "x"), 1e-14)
	})

	t.Run("analytic and finite difference agree", func(t *testing.T) {
		d := declare(t, affine{})
		in, st, _, _ := Buffers(d)
		st["s"][0] = 1.5

		exact, err := Linearize("a", affine{}, d, in, st)
		require.NoError(t, err)
		approx, err := Linearize("a", affineFD{}, d, in, st)
		require.NoError(t, err)

		assert.Equal(t, Analytic, MethodOf(affine{}))
		for _, pair := range [][2]string{{"s", "a"}, {"s", "b"}, {"s", "s"}, {"twice", "s"}, {"twice", "a"}} {
			assert.InDelta(t, exact.At(pair[0], pair[1]), approx.At(pair[0], pair[1]), 1e-6, "d%s/d%s", pair[0], pair[1])
		}
	})

	t.Run("finite difference step follows the input magnitude", func(t *testing.T) {
		// --- Arrange ---
		square := funcComp{compute: func(in Reader, out Writer) error {
			x := in.Float("x")
			out.SetFloat("y", x*x)
			return nil
		}}
		d := declare(t, square)
		in, st, _, _ := Buffers(d)
		in["x"][0] = 1e8

		// --- Act ---
		jac, err := Linearize("sq", square, d, in, st)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, FiniteDiff, MethodOf(square))
		assert.InEpsilon(t, 2e8, jac.At("y", "x"), 1e-5)
	})

	t.Run("apply", func(t *testing.T) {
		d := declare(t, affine{})
		in, st, _, _ := Buffers(d)
		jac, err := Linearize("a", affine{}, d, in, st)
		require.NoError(t, err)

		got := jac.Apply(Values{"s": {1}, "b": {0.5}})

		assert.Equal(t, Values{"twice": {2}, "s": {2.5}}, got)
	})
}
