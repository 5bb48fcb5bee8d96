// Package casefile loads run cases from HCL files.
//
// A case names a registered model, overrides solver settings of its groups,
// assigns input values, optionally sweeps one input over a range and lists
// the variables to report. A file may also configure recorders that every
// case streams to.
package casefile
