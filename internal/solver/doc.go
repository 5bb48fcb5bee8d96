// Package solver implements the nonlinear and linear solvers a group runs.
//
// Nonlinear solvers drive a System:
//
//   - run_once executes the children a single time and needs an acyclic group.
//   - nlgs (nonlinear Gauss-Seidel) repeats full sweeps until the values
//     carried by connections stop changing.
//   - newton solves J·Δx = −F(x) for the group's unknowns (owned states and
//     tear variables) with the group's linear solver.
//
// Linear solvers work on a matrix-free Operator: gmres (restarted GMRES),
// direct (dense LU through gonum) and lgs (point Gauss-Seidel sweeps).
//
// Solvers are allocated by kind name through NewNonlinear and NewLinear.
package solver
