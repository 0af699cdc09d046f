package testutil

import (
	"bytes"
	"context"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/app"
	"github.com/vk/nusig/internal/hcl"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Dir is the temporary root the files were written to.
	Dir       string
	LogOutput string
	Report    *app.Report
	Err       error
}

// Path joins name onto the root directory of the run.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(name))
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, configure ...func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, configure...)
}

// RunIntegrationTestWithContext writes files (relative slash paths) into a
// temporary directory, runs one generation pass over it and returns the
// outcome. A "nusig.hcl" entry is used as the settings file.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, configure ...func(*app.Config)) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	WriteTree(t, tmpDir, files)

	cfg := app.Config{
		Paths:     []string{tmpDir},
		LogLevel:  "debug",
		LogFormat: "text",
		Workers:   4,
	}
	if _, ok := files["nusig.hcl"]; ok {
		cfg.ConfigFile = filepath.Join(tmpDir, "nusig.hcl")
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &app.SafeBuffer{}
	testApp, err := app.NewApp(logBuffer, appConfig, hcl.NewLoader())
	if err != nil {
		return &HarnessResult{Dir: tmpDir, LogOutput: logBuffer.String(), Err: err}
	}

	report, runErr := testApp.Run(ctx)

	t.Cleanup(func() {
		if os.Getenv("NUSIG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		Dir:       tmpDir,
		LogOutput: logBuffer.String(),
		Report:    report,
		Err:       runErr,
	}
}

// WriteTree writes files below root, creating directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// GeneratedVars parses a generated file and returns the source of every
// package-level variable initializer, keyed by variable name.
func GeneratedVars(t *testing.T, path string) map[string]string {
	t.Helper()

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	require.NoError(t, err, "generated file must be valid Go")

	vars := make(map[string]string)
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				var buf bytes.Buffer
				require.NoError(t, printer.Fprint(&buf, fset, vs.Values[i]))
				vars[name.Name] = buf.String()
			}
		}
	}
	return vars
}
