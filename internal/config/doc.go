// Package config defines the format-agnostic settings of the generator, along
// with the interfaces (Loader, Evaluator) for reading them from a config file
// and evaluating the expressions they carry for one generated file.
//
// Concrete implementations of the interfaces, such as for HCL, are provided
// in separate packages.
package config
