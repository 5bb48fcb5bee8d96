// Package dag holds the dependency graph a group builds over its children.
//
// Nodes are identified by name and remember the order they were added in.
// Every query that returns several nodes is ordered by that rank, so the
// execution order derived from a graph never depends on map iteration.
// Cycles are allowed: StronglyConnected and Order expose them as components
// that an iterative solver must converge.
package dag
