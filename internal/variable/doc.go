// Package variable holds the per-component registry of declared parameters,
// outputs and states.
package variable
