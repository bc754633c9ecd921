// Package app contains the application logic behind the command line: it
// discovers documents, loads them concurrently, reports on them and
// optionally copies them into a document store. It is decoupled from flag
// parsing and process exit handling, which live in internal/cli and cmd/cli.
package app
