package solver

import "context"

// RunOnce executes the group's children a single time. Groups using it must
// be acyclic and must not hold unsolved states.
type RunOnce struct{}

func (*RunOnce) Kind() string     { return KindRunOnce }
func (*RunOnce) Iterative() bool  { return false }
func (*RunOnce) OwnsStates() bool { return false }

// Solve runs one sweep.
func (*RunOnce) Solve(ctx context.Context, sys System) (Result, error) {
	if err := sys.Sweep(ctx); err != nil {
		return Result{Status: Failed, Iterations: 1}, err
	}
	sys.Record(ctx, Iteration{System: sys.Path(), Solver: KindRunOnce, Iter: 1, Status: Converged})
	return Result{Status: Converged, Iterations: 1}, nil
}
