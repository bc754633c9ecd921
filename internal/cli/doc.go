// Package cli turns command-line arguments into an app.Config. Invalid usage
// is reported as an ExitError carrying the process exit code.
package cli
