// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the generation lifecycle (a single pass over
// the source tree or a watch loop), decoupled from any specific entrypoint
// like a CLI.
package app
