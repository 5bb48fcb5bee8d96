// Package registry provides the central "glue" for the module system.
//
// Physics modules register named model builders here. Case files refer to
// models by these names, and the application asks the registry to build a
// fresh model tree for every run.
//
// During application startup, the registry is populated and then validated:
// every registered model is built and set up once, so that broken wiring in
// a module fails before any case runs.
package registry
