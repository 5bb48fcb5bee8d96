package solver

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Status is the state of a nonlinear solve.
type Status int

const (
	// Initialized means no residual has been evaluated yet.
	Initialized Status = iota
	// Iterating means the solver is between updates.
	Iterating
	// Converged means the tolerance was met.
	Converged
	// Diverged means the iteration cap, the timeout or a non-finite norm stopped the solve.
	Diverged
	// Failed means a compute error or a failed linear solve stopped the solve.
	Failed
)

func (s Status) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Options configures a nonlinear solver. Zero fields take the kind's default.
type Options struct {
	Atol    float64
	Rtol    float64
	MaxIter int
	Timeout time.Duration
	// Relax scales the Newton step, 0 < Relax <= 1.
	Relax float64
}

// withDefaults fills zero fields from def.
func (o Options) withDefaults(def Options) Options {
	if o.Atol <= 0 {
		o.Atol = def.Atol
	}
	if o.Rtol <= 0 {
		o.Rtol = def.Rtol
	}
	if o.MaxIter <= 0 {
		o.MaxIter = def.MaxIter
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Relax <= 0 || o.Relax > 1 {
		o.Relax = def.Relax
	}
	return o
}

// tightened lowers the tolerances to at most atol and rtol and raises the
// iteration cap to at least minIter.
func (o Options) tightened(atol, rtol float64, minIter int) Options {
	o.Atol = math.Min(o.Atol, atol)
	o.Rtol = math.Min(o.Rtol, rtol)
	o.MaxIter = max(o.MaxIter, minIter)
	return o
}

// Result summarizes a nonlinear solve.
type Result struct {
	Status     Status
	Iterations int
	Norm0      float64
	Norm       float64
}

// Iteration is one recorded step of a solver.
type Iteration struct {
	System string
	Solver string
	Iter   int
	Norm   float64
	Status Status
}

// Operator is a matrix-free linear operator.
type Operator interface {
	Size() int
	Apply(dst, v []float64) error
}

// System is a group as seen by its nonlinear solver.
type System interface {
	// Path is the absolute path of the group, "" for the root.
	Path() string
	// Sweep executes every child once in order.
	Sweep(ctx context.Context) error
	// Carried appends the current values carried by the group's connections to dst.
	Carried(dst []float64) []float64
	// Unknowns is the number of Newton unknowns.
	Unknowns() int
	// Guess writes the current unknowns into x.
	Guess(x []float64)
	// Evaluate sets the unknowns to x, runs the group once and writes the residuals to f.
	Evaluate(ctx context.Context, x, f []float64) error
	// Linearize returns dF/dx at the last evaluated point.
	Linearize(ctx context.Context) (Operator, error)
	// Record reports one solver iteration.
	Record(ctx context.Context, it Iteration)
}

// Nonlinear drives a System to self-consistency.
type Nonlinear interface {
	Kind() string
	// Iterative reports whether the solver can converge cycles.
	Iterative() bool
	// OwnsStates reports whether the solver treats states as unknowns.
	OwnsStates() bool
	Solve(ctx context.Context, sys System) (Result, error)
}

// Nonlinear solver kinds.
const (
	KindRunOnce = "run_once"
	KindNLGS    = "nlgs"
	KindNewton  = "newton"
)

type nonlinearAllocator func(opts Options, lin Linear) Nonlinear

var nonlinearAllocators = map[string]nonlinearAllocator{
	KindRunOnce: func(Options, Linear) Nonlinear { return &RunOnce{} },
	KindNLGS: func(opts Options, _ Linear) Nonlinear {
		return &NLGS{Options: opts.withDefaults(DefaultNLGSOptions)}
	},
	KindNewton: func(opts Options, lin Linear) Nonlinear {
		if lin == nil {
			lin = NewGMRES(LinearOptions{})
		}
		return &Newton{Options: opts.withDefaults(DefaultNewtonOptions), Linear: lin}
	},
}

// NewNonlinear allocates a nonlinear solver by kind. lin may be nil.
func NewNonlinear(kind string, opts Options, lin Linear) (Nonlinear, error) {
	alloc, ok := nonlinearAllocators[kind]
	if !ok {
		return nil, fmt.Errorf("unknown nonlinear solver kind '%s' (available: %v)", kind, NonlinearKinds())
	}
	return alloc(opts, lin), nil
}

// Tightened returns a copy of nl that converges to at most atol and rtol
// and may take at least minIter iterations. Solvers without tolerances are
// returned as they are.
func Tightened(nl Nonlinear, atol, rtol float64, minIter int) Nonlinear {
	switch s := nl.(type) {
	case *NLGS:
		return &NLGS{Options: s.Options.tightened(atol, rtol, minIter)}
	case *Newton:
		return &Newton{Options: s.Options.tightened(atol, rtol, minIter), Linear: s.Linear}
	}
	return nl
}

// NonlinearKinds lists the registered nonlinear solver kinds.
func NonlinearKinds() []string {
	return keys(nonlinearAllocators)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// deadline returns a check reporting whether the timeout or ctx has expired.
func deadline(ctx context.Context, timeout time.Duration) func() error {
	var end time.Time
	if timeout > 0 {
		end = time.Now().Add(timeout)
	}
	return func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !end.IsZero() && time.Now().After(end) {
			return fmt.Errorf("timeout after %s", timeout)
		}
		return nil
	}
}
