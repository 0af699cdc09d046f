package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag prints usage and returns a nil error.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), cli.Streams{Out: out, Err: &bytes.Buffer{}}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), cli.Streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_InvalidConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A settings file with a syntax error fails the generate command.
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nusig.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte("qualifier = \n"), 0600), "failed to set up test file")

	// --- Act ---
	err := run(context.Background(), cli.Streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, []string{"generate", "--config", configPath, tempDir})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitFailure, exitErr.Code)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRun_MakeFromEmptyStdin(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), cli.Streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, []string{"make"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
}
