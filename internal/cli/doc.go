// Package cli turns command-line arguments into an app.Config. Flags win
// over HYPERMDO_* environment variables and the optional settings file;
// usage and parse failures surface as ExitError with the exit code to use.
package cli
