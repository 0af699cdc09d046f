// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It maps
// the nusig commands onto the app, driver and dsl packages.
package cli
