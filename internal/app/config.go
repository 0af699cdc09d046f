package app

import (
	"errors"
	"fmt"
	"os"
	"runtime"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // files or directories to scan

	// ConfigFile is an explicit settings file. When empty, nusig.hcl in the
	// working directory is used if it exists.
	ConfigFile string

	// Overrides for the settings file. Empty means "keep the file's value".
	Qualifier  string
	ImportPath string
	Suffix     string

	LogFormat string
	LogLevel  string
	Workers   int
	Watch     bool
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	for _, p := range cfg.Paths {
		if p == "" {
			return nil, errors.New("paths must not contain an empty entry")
		}
	}
	return &cfg, nil
}
