// Package model assembles components into groups and runs them as a Problem.
//
// A Group owns ordered children (components or subgroups), the connections
// declared between them, promoted names and its solver configuration.
// Problem.Setup resolves the whole tree once: it lays every variable out in
// one flat store, turns connections into unit-converting transfers owned by
// the lowest group containing both ends, orders each group's children,
// rejects cycles a group cannot iterate and hands every state to the nearest
// Newton ancestor.
//
// Before a child executes, its group applies every transfer targeting it, so
// within one sweep each child reads the freshest upstream values.
package model
