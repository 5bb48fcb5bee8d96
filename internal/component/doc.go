// Package component defines the contract every physics component implements
// and the helpers the framework uses to evaluate and linearize it.
//
// A component declares its variables once in Declare and is then evaluated
// repeatedly. Compute reads parameters (and, for implicit components, the
// current states) and writes explicit outputs. Implicit components also
// implement ComputeResiduals, returning one residual entry per state entry.
//
// Derivatives come from one of three sources, picked per component:
// an analytic Linearizer, complex step for components implementing the
// complex interfaces, or forward finite differences through gonum's fd
// package as the fallback.
package component
