package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the given files in order, later files overriding earlier
	// ones, and returns the merged model with a matching Evaluator. Paths
	// that do not exist are skipped.
	Load(ctx context.Context, paths ...string) (*Model, Evaluator, error)
}

// Evaluator turns expressions kept in a Model into values for one file.
type Evaluator interface {
	// String evaluates expr against env and converts the result to a string.
	String(ctx context.Context, expr hcl.Expression, env Env) (string, error)
}
