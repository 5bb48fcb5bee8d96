// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: load case
// files, build each case's model from the registry, run it (once or as a
// sweep) and write the reports. It is decoupled from any specific entrypoint
// like a CLI or server.
package app
