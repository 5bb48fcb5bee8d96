package mdoerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAssembly is the category of every design-time error.
	ErrAssembly = errors.New("model assembly error")
	// ErrCompute is the category of component evaluation errors.
	ErrCompute = errors.New("compute error")
	// ErrNotConverged is the category of solver failures.
	ErrNotConverged = errors.New("solver did not converge")
	// ErrSingular is returned by linear solvers for a singular operator.
	ErrSingular = errors.New("singular linear system")
	// ErrNonFinite marks NaN or Inf values written by a component.
	ErrNonFinite = errors.New("non-finite value")
	// ErrDrivenVariable is returned by Problem.Set for a connected parameter.
	ErrDrivenVariable = errors.New("variable is driven by a connection")
)

// DuplicateNameError is a variable, child or promoted name collision.
type DuplicateNameError struct {
	Scope string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate name '%s' in '%s'", e.Name, scopeName(e.Scope))
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrAssembly }

// UnknownVariableError is a path or name that does not resolve to a declared variable.
type UnknownVariableError struct {
	Scope string
	Name  string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable '%s' in '%s'", e.Name, scopeName(e.Scope))
}

func (e *UnknownVariableError) Is(target error) bool { return target == ErrAssembly }

// MultipleSourcesError is a second driving connection to the same parameter.
type MultipleSourcesError struct {
	Target   string
	Existing string
	Source   string
}

func (e *MultipleSourcesError) Error() string {
	return fmt.Sprintf("'%s' is already driven by '%s', cannot also connect '%s'", e.Target, e.Existing, e.Source)
}

func (e *MultipleSourcesError) Is(target error) bool { return target == ErrAssembly }

// UnitMismatchError is a connection between dimensionally incompatible variables.
type UnitMismatchError struct {
	Source      string
	Target      string
	SourceUnits string
	TargetUnits string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("cannot connect '%s' [%s] to '%s' [%s]: incompatible units",
		e.Source, e.SourceUnits, e.Target, e.TargetUnits)
}

func (e *UnitMismatchError) Is(target error) bool { return target == ErrAssembly }

// AlreadyPromotedError is a promoted name collision that cannot be merged.
type AlreadyPromotedError struct {
	Group    string
	Name     string
	Existing string
	Variable string
}

func (e *AlreadyPromotedError) Error() string {
	return fmt.Sprintf("'%s' in '%s' is already promoted from '%s', cannot promote '%s'",
		e.Name, scopeName(e.Group), e.Existing, e.Variable)
}

func (e *AlreadyPromotedError) Is(target error) bool { return target == ErrAssembly }

// InvalidConnectionError is a connection whose endpoints have the wrong kind or size.
type InvalidConnectionError struct {
	Source string
	Target string
	Reason string
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("invalid connection '%s' -> '%s': %s", e.Source, e.Target, e.Reason)
}

func (e *InvalidConnectionError) Is(target error) bool { return target == ErrAssembly }

// UnresolvableCycleError is a dependency cycle inside a group that runs its
// children only once.
type UnresolvableCycleError struct {
	Group   string
	Members []string
}

func (e *UnresolvableCycleError) Error() string {
	return fmt.Sprintf("cycle between [%s] in '%s' needs an iterative nonlinear solver",
		strings.Join(e.Members, ", "), scopeName(e.Group))
}

func (e *UnresolvableCycleError) Is(target error) bool { return target == ErrAssembly }

// UnsolvedStateError is a state variable with no enclosing Newton solver.
type UnsolvedStateError struct {
	Variable string
	Group    string
}

func (e *UnsolvedStateError) Error() string {
	return fmt.Sprintf("state '%s' is not solved by any Newton group (reached '%s')", e.Variable, scopeName(e.Group))
}

func (e *UnsolvedStateError) Is(target error) bool { return target == ErrAssembly }

// ComputeError wraps a failure raised while evaluating a component.
type ComputeError struct {
	Component string
	Variable  string
	Err       error
}

func (e *ComputeError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("compute failed in '%s' at '%s': %v", e.Component, e.Variable, e.Err)
	}
	return fmt.Sprintf("compute failed in '%s': %v", e.Component, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

func (e *ComputeError) Is(target error) bool { return target == ErrCompute }

// ConvergenceError is a nonlinear Gauss-Seidel solve that did not settle.
type ConvergenceError struct {
	Group      string
	Iterations int
	Metric     float64
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("gauss-seidel in '%s' failed to converge after %d iterations (metric %.6g): %s",
		scopeName(e.Group), e.Iterations, e.Metric, e.Reason)
}

func (e *ConvergenceError) Is(target error) bool { return target == ErrNotConverged }

// DivergedError is a Newton solve that hit its cap or went non-finite.
type DivergedError struct {
	Group      string
	Iterations int
	Norm       float64
	Reason     string
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("newton in '%s' diverged after %d iterations (residual norm %.6g): %s",
		scopeName(e.Group), e.Iterations, e.Norm, e.Reason)
}

func (e *DivergedError) Is(target error) bool { return target == ErrNotConverged }

// FailedError is a Newton solve stopped by a compute error or a failed linear solve.
type FailedError struct {
	Group      string
	Iterations int
	Norm       float64
	Err        error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("newton in '%s' failed at iteration %d (residual norm %.6g): %v",
		scopeName(e.Group), e.Iterations, e.Norm, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

func (e *FailedError) Is(target error) bool { return target == ErrNotConverged }

// LinearSolverDivergenceError is a linear solve that did not reach its tolerance.
type LinearSolverDivergenceError struct {
	Solver     string
	Iterations int
	Residual   float64
}

func (e *LinearSolverDivergenceError) Error() string {
	return fmt.Sprintf("linear solver %s did not converge after %d iterations (residual %.6g)",
		e.Solver, e.Iterations, e.Residual)
}

func (e *LinearSolverDivergenceError) Is(target error) bool { return target == ErrNotConverged }

// IsAssembly reports whether err is a design-time model error.
func IsAssembly(err error) bool { return errors.Is(err, ErrAssembly) }

// IsNotConverged reports whether err is a solver non-convergence result.
func IsNotConverged(err error) bool { return errors.Is(err, ErrNotConverged) }

func scopeName(s string) string {
	if s == "" {
		return "<root>"
	}
	return s
}
