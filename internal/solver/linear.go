package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearOptions configures a linear solver. Zero fields take the kind's default.
type LinearOptions struct {
	Atol    float64
	Rtol    float64
	MaxIter int
	Restart int
}

func (o LinearOptions) withDefaults(def LinearOptions) LinearOptions {
	if o.Atol <= 0 {
		o.Atol = def.Atol
	}
	if o.Rtol <= 0 {
		o.Rtol = def.Rtol
	}
	if o.MaxIter <= 0 {
		o.MaxIter = def.MaxIter
	}
	if o.Restart <= 0 {
		o.Restart = def.Restart
	}
	return o
}

// LinearResult summarizes a linear solve.
type LinearResult struct {
	Iterations int
	Residual   float64
}

// Linear solves op·x = b. x holds the initial guess on entry.
type Linear interface {
	Kind() string
	Solve(ctx context.Context, op Operator, b, x []float64) (LinearResult, error)
}

// Linear solver kinds.
const (
	KindGMRES  = "gmres"
	KindDirect = "direct"
	KindLGS    = "lgs"
)

var linearAllocators = map[string]func(LinearOptions) Linear{
	KindGMRES:  func(o LinearOptions) Linear { return NewGMRES(o) },
	KindDirect: func(LinearOptions) Linear { return &Direct{} },
	KindLGS:    func(o LinearOptions) Linear { return &LGS{Options: o.withDefaults(DefaultLGSOptions)} },
}

// NewLinear allocates a linear solver by kind.
func NewLinear(kind string, opts LinearOptions) (Linear, error) {
	alloc, ok := linearAllocators[kind]
	if !ok {
		return nil, fmt.Errorf("unknown linear solver kind '%s' (available: %v)", kind, LinearKinds())
	}
	return alloc(opts), nil
}

// LinearKinds lists the registered linear solver kinds.
func LinearKinds() []string {
	return keys(linearAllocators)
}

// Assemble builds the dense matrix of op by applying it to unit vectors.
func Assemble(op Operator) (*mat.Dense, error) {
	n := op.Size()
	if n == 0 {
		return nil, nil
	}
	a := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		if err := op.Apply(col, e); err != nil {
			return nil, err
		}
		e[j] = 0
		a.SetCol(j, col)
	}
	return a, nil
}

// MatrixOperator adapts a dense matrix to Operator.
type MatrixOperator struct {
	M mat.Matrix
}

func (m MatrixOperator) Size() int {
	r, _ := m.M.Dims()
	return r
}

func (m MatrixOperator) Apply(dst, v []float64) error {
	r, c := m.M.Dims()
	if len(v) != c || len(dst) != r {
		return fmt.Errorf("operator is %dx%d, got vectors %d and %d", r, c, len(dst), len(v))
	}
	out := mat.NewVecDense(r, dst)
	out.MulVec(m.M, mat.NewVecDense(c, v))
	return nil
}

// residual writes b - op·x into r and returns its norm.
func residual(op Operator, b, x, r []float64) (float64, error) {
	if err := op.Apply(r, x); err != nil {
		return 0, err
	}
	for i := range r {
		r[i] = b[i] - r[i]
	}
	return norm(r), nil
}
