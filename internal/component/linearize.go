package component

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/variable"
	"gonum.org/v1/gonum/diff/fd"
)

// complexStep is the imaginary perturbation used for complex-step derivatives.
const complexStep = 1e-30

// Method names the derivative source Linearize picks for a component.
type Method string

// Derivative sources, in order of preference.
const (
	Analytic    Method = "analytic"
	ComplexStep Method = "complex-step"
	FiniteDiff  Method = "finite-difference"
)

// MethodOf reports which derivative source Linearize uses for c.
func MethodOf(c Component) Method {
	if _, ok := c.(Linearizer); ok {
		return Analytic
	}
	if supportsComplex(c) {
		return ComplexStep
	}
	return FiniteDiff
}

func supportsComplex(c Component) bool {
	if _, ok := c.(ComplexComputer); !ok {
		return false
	}
	if _, implicit := c.(Implicit); implicit {
		_, ok := c.(ComplexResidualComputer)
		return ok
	}
	return true
}

// Linearize computes the Jacobian of c at the given parameter and state
// values. The inputs are not modified.
func Linearize(name string, c Component, d *variable.Declarations, in, states Values) (jac *Jacobian, err error) {
	jac = NewJacobian(d)
	if nr, nc := jac.Dims(); nr == 0 || nc == 0 {
		return jac, nil
	}

	switch MethodOf(c) {
	case Analytic:
		defer func() {
			if r := recover(); r != nil {
				err = recovered(name, r)
			}
		}()
		if err := c.(Linearizer).Linearize(NewReader(name, in), NewReader(name, states), jac); err != nil {
			return nil, wrap(name, err)
		}
		return jac, nil
	case ComplexStep:
		if err := linearizeComplex(name, c, d, in, states, jac); err != nil {
			return nil, err
		}
		return jac, nil
	}

	if err := linearizeFD(name, c, d, in, states, jac); err != nil {
		return nil, err
	}
	return jac, nil
}

func linearizeComplex(name string, c Component, d *variable.Declarations, in, states Values, jac *Jacobian) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(name, r)
		}
	}()

	cin, cst := toComplex(in), toComplex(states)
	_, _, out, res := Buffers(d)
	cout, cres := toComplex(out), toComplex(res)

	cc := c.(ComplexComputer)
	crc, implicit := c.(ComplexResidualComputer)
	eval := func() error {
		if err := cc.ComputeComplex(ComplexReader{name, []ComplexValues{cin, cst}}, ComplexWriter{ComplexReader{name, []ComplexValues{cout}}}); err != nil {
			return err
		}
		if implicit {
			return crc.ComputeResidualsComplex(ComplexReader{name, []ComplexValues{cin}}, ComplexReader{name, []ComplexValues{cst}}, ComplexWriter{ComplexReader{name, []ComplexValues{cres}}})
		}
		return nil
	}

	m := jac.Matrix()
	for _, wrt := range jac.colNames {
		src := cin
		if isState(d, wrt) {
			src = cst
		}
		col := jac.cols[wrt]
		for k := 0; k < col.size; k++ {
			src[wrt][k] += complex(0, complexStep)
			if err := eval(); err != nil {
				return wrap(name, err)
			}
			src[wrt][k] -= complex(0, complexStep)
			for _, of := range jac.rowNames {
				row := jac.rows[of]
				vals, ok := cout[of]
				if !ok {
					vals = cres[of]
				}
				for i := 0; i < row.size; i++ {
					m.Set(row.off+i, col.off+k, imag(vals[i])/complexStep)
				}
			}
		}
	}
	return nil
}

func linearizeFD(name string, c Component, d *variable.Declarations, in, states Values, jac *Jacobian) error {
	settings := DefaultFDSettings
	if fc, ok := c.(FDConfigurer); ok {
		settings = fc.FDSettings()
	}

	params := d.Of(variable.Parameter)
	stateMetas := d.Of(variable.State)
	outMetas := d.Of(variable.Output)

	x := make([]float64, 0, jac.nc)
	for _, m := range params {
		x = append(x, in[m.Name]...)
	}
	for _, m := range stateMetas {
		x = append(x, states[m.Name]...)
	}

	lin, lst := in.Clone(), states.Clone()
	_, _, out, res := Buffers(d)

	var firstErr error
	f := func(y, x []float64) {
		if firstErr != nil {
			return
		}
		i := 0
		for _, m := range params {
			copy(lin[m.Name], x[i:i+m.Size()])
			i += m.Size()
		}
		for _, m := range stateMetas {
			copy(lst[m.Name], x[i:i+m.Size()])
			i += m.Size()
		}
		if err := Evaluate(name, c, lin, lst, out, res); err != nil {
			firstErr = err
			return
		}
		i = 0
		for _, m := range outMetas {
			copy(y[i:], out[m.Name])
			i += m.Size()
		}
		for _, m := range stateMetas {
			copy(y[i:], res[m.Name])
			i += m.Size()
		}
	}

	// fd.Jacobian takes one step for all inputs, so differentiate with
	// respect to z = x/scale and rescale the columns afterwards.
	scale := make([]float64, len(x))
	z := make([]float64, len(x))
	for i, v := range x {
		scale[i] = 1
		if !settings.Absolute {
			scale[i] = math.Max(1, math.Abs(v))
		}
		z[i] = v / scale[i]
	}
	xs := make([]float64, len(x))
	scaled := func(y, z []float64) {
		for i := range z {
			xs[i] = z[i] * scale[i]
		}
		f(y, xs)
	}

	formula := fd.Forward
	if settings.Central {
		formula = fd.Central
	}
	m := jac.Matrix()
	fd.Jacobian(m, scaled, z, &fd.JacobianSettings{Formula: formula, Step: settings.Step})
	rows, _ := m.Dims()
	for j, s := range scale {
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)/s)
		}
	}
	return firstErr
}

func isState(d *variable.Declarations, name string) bool {
	m, err := d.Get(name)
	return err == nil && m.Kind == variable.State
}
