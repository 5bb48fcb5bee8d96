package component

import (
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/variable"
	"gonum.org/v1/gonum/mat"
)

type span struct{ off, size int }

// Jacobian holds the partial derivatives of one component. Rows are outputs
// followed by residuals (named after their state). Columns are parameters
// followed by states.
type Jacobian struct {
	scope    string
	rows     map[string]span
	cols     map[string]span
	rowNames []string
	colNames []string
	nr, nc   int
	m        *mat.Dense
}

// NewJacobian allocates a zero Jacobian shaped after d.
func NewJacobian(d *variable.Declarations) *Jacobian {
	j := &Jacobian{scope: d.Scope(), rows: map[string]span{}, cols: map[string]span{}}
	for _, m := range append(d.Of(variable.Output), d.Of(variable.State)...) {
		j.rows[m.Name] = span{j.nr, m.Size()}
		j.rowNames = append(j.rowNames, m.Name)
		j.nr += m.Size()
	}
	for _, m := range append(d.Of(variable.Parameter), d.Of(variable.State)...) {
		j.cols[m.Name] = span{j.nc, m.Size()}
		j.colNames = append(j.colNames, m.Name)
		j.nc += m.Size()
	}
	if j.nr > 0 && j.nc > 0 {
		j.m = mat.NewDense(j.nr, j.nc, nil)
	}
	return j
}

// Dims returns the total number of rows and columns.
func (j *Jacobian) Dims() (r, c int) { return j.nr, j.nc }

func (j *Jacobian) block(of, wrt string) (span, span) {
	r, ok := j.rows[of]
	if !ok {
		panic(&mdoerr.UnknownVariableError{Scope: j.scope, Name: of})
	}
	c, ok := j.cols[wrt]
	if !ok {
		panic(&mdoerr.UnknownVariableError{Scope: j.scope, Name: wrt})
	}
	return r, c
}

// Set sets d(of)/d(wrt) for scalar variables.
func (j *Jacobian) Set(of, wrt string, v float64) {
	r, c := j.block(of, wrt)
	j.m.Set(r.off, c.off, v)
}

// SetBlock sets d(of)/d(wrt) from a row-major slice.
func (j *Jacobian) SetBlock(of, wrt string, v []float64) {
	r, c := j.block(of, wrt)
	if len(v) != r.size*c.size {
		panic(fmt.Errorf("block d%s/d%s needs %d entries, got %d", of, wrt, r.size*c.size, len(v)))
	}
	for i := 0; i < r.size; i++ {
		for k := 0; k < c.size; k++ {
			j.m.Set(r.off+i, c.off+k, v[i*c.size+k])
		}
	}
}

// SetDiag sets a diagonal d(of)/d(wrt) block for same-size vectors.
func (j *Jacobian) SetDiag(of, wrt string, v []float64) {
	r, c := j.block(of, wrt)
	if r.size != c.size || len(v) != r.size {
		panic(fmt.Errorf("diagonal block d%s/d%s needs %d entries, got %d", of, wrt, r.size, len(v)))
	}
	for i, x := range v {
		j.m.Set(r.off+i, c.off+i, x)
	}
}

// At returns d(of)/d(wrt) for scalar variables.
func (j *Jacobian) At(of, wrt string) float64 {
	r, c := j.block(of, wrt)
	return j.m.At(r.off, c.off)
}

// Block returns a copy of the d(of)/d(wrt) block.
func (j *Jacobian) Block(of, wrt string) *mat.Dense {
	r, c := j.block(of, wrt)
	var out mat.Dense
	out.CloneFrom(j.m.Slice(r.off, r.off+r.size, c.off, c.off+c.size))
	return &out
}

// Matrix exposes the whole Jacobian. It is nil when either dimension is zero.
func (j *Jacobian) Matrix() *mat.Dense { return j.m }

// Apply multiplies the Jacobian by a column-space perturbation keyed by
// parameter and state names. Missing names count as zero. The result is keyed
// by output names and by state names for residual rows.
func (j *Jacobian) Apply(dcols Values) Values {
	out := make(Values, len(j.rowNames))
	for _, name := range j.rowNames {
		out[name] = make([]float64, j.rows[name].size)
	}
	if j.m == nil {
		return out
	}
	x := mat.NewVecDense(j.nc, nil)
	nonzero := false
	for _, name := range j.colNames {
		v, ok := dcols[name]
		if !ok {
			continue
		}
		s := j.cols[name]
		for i := 0; i < s.size && i < len(v); i++ {
			if v[i] != 0 {
				nonzero = true
			}
			x.SetVec(s.off+i, v[i])
		}
	}
	if !nonzero {
		return out
	}
	y := mat.NewVecDense(j.nr, nil)
	y.MulVec(j.m, x)
	for _, name := range j.rowNames {
		s := j.rows[name]
		for i := 0; i < s.size; i++ {
			out[name][i] = y.AtVec(s.off + i)
		}
	}
	return out
}
