package solver

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// funcSystem is a System backed by plain functions.
type funcSystem struct {
	// newton view
	x0       []float64
	residual func(x, f []float64) error
	jacobian func(x []float64) *mat.Dense

	// gauss-seidel view
	carried []float64
	sweep   func(c []float64) error

	last    []float64
	records []Iteration
}

func (s *funcSystem) Path() string { return "test" }

func (s *funcSystem) Sweep(context.Context) error { return s.sweep(s.carried) }

func (s *funcSystem) Carried(dst []float64) []float64 { return append(dst, s.carried...) }

func (s *funcSystem) Unknowns() int { return len(s.x0) }

func (s *funcSystem) Guess(x []float64) { copy(x, s.x0) }

func (s *funcSystem) Evaluate(_ context.Context, x, f []float64) error {
	s.last = append(s.last[:0], x...)
	return s.residual(x, f)
}

func (s *funcSystem) Linearize(context.Context) (Operator, error) {
	return MatrixOperator{M: s.jacobian(s.last)}, nil
}

func (s *funcSystem) Record(_ context.Context, it Iteration) { s.records = append(s.records, it) }

func (s *funcSystem) norms() []float64 {
	var out []float64
	for _, r := range s.records {
		out = append(out, r.Norm)
	}
	return out
}
