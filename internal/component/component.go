package component

import "github.com/specialistvlad/hypermdo/internal/variable"

// Component is the unit of computation.
type Component interface {
	// Declare registers every parameter, output and state.
	Declare(d *variable.Declarations) error
	// Compute writes explicit outputs. in exposes parameters and states.
	Compute(in Reader, out Writer) error
}

// Implicit is a component that owns states.
type Implicit interface {
	Component
	// ComputeResiduals writes one residual per state entry. states is read-only.
	ComputeResiduals(in, states Reader, res Writer) error
}

// Linearizer supplies analytic partial derivatives. Rows of jac are outputs
// and residuals (named after their state); columns are parameters and states.
type Linearizer interface {
	Linearize(in, states Reader, jac *Jacobian) error
}

// ComplexComputer evaluates Compute on complex inputs for complex-step derivatives.
type ComplexComputer interface {
	ComputeComplex(in ComplexReader, out ComplexWriter) error
}

// ComplexResidualComputer evaluates ComputeResiduals on complex inputs.
type ComplexResidualComputer interface {
	ComputeResidualsComplex(in, states ComplexReader, res ComplexWriter) error
}

// FDSettings controls finite-difference linearization. Step is relative:
// input x is perturbed by Step·max(1, |x|), so tube lengths and cell
// resistances in the same component both get a usable step. Absolute
// perturbs every input by Step as it is.
type FDSettings struct {
	Step     float64
	Central  bool
	Absolute bool
}

// DefaultFDSettings is the fallback finite-difference configuration.
var DefaultFDSettings = FDSettings{Step: 1e-6}

// FDConfigurer overrides the finite-difference settings of a component.
type FDConfigurer interface {
	FDSettings() FDSettings
}
