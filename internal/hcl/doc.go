// Package hcl provides the concrete HCL implementation of the configuration
// loading and evaluation interfaces defined in the `config` package. It parses
// nusig.hcl files, merges them into a config.Model and evaluates the header
// expression against the env object of each generated file.
package hcl
