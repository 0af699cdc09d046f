package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// --- Arrange ---
	missing := filepath.Join(t.TempDir(), config.DefaultFile)

	// --- Act ---
	m, _, err := NewLoader().Load(context.Background(), missing)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), m)
}

func TestLoad_MergesInOrder(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	first := writeConfig(t, dir, "a.hcl", `
qualifier   = "sig"
import_path = "example.com/rt/sig"
`)
	second := writeConfig(t, dir, "b.hcl", `
suffix = "_sig.go"
header = "Code generated for ${env.GOPACKAGE} from ${env.GOFILE}. DO NOT EDIT."
`)

	// --- Act ---
	m, eval, err := NewLoader().Load(context.Background(), first, second)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "sig", m.Qualifier)
	assert.Equal(t, "example.com/rt/sig", m.ImportPath)
	assert.Equal(t, "_sig.go", m.Suffix)
	require.NotNil(t, m.Header)

	header, err := eval.String(context.Background(), m.Header, config.Env{GoPackage: "cmds", GoFile: "greet.go"})
	require.NoError(t, err)
	assert.Equal(t, "Code generated for cmds from greet.go. DO NOT EDIT.", header)
}

func TestLoad_LaterFileWithoutHeaderKeepsIt(t *testing.T) {
	dir := t.TempDir()
	first := writeConfig(t, dir, "a.hcl", `header = "first"`)
	second := writeConfig(t, dir, "b.hcl", `qualifier = "rt"`)

	m, _, err := NewLoader().Load(context.Background(), first, second)

	require.NoError(t, err)
	require.NotNil(t, m.Header)
	assert.Equal(t, "rt", m.Qualifier)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `qualifier = `, "failed to parse HCL file"},
		{"unknown attribute", `color = "red"`, "failed to decode HCL file"},
		{"wrong type", `suffix = ["a"]`, "failed to decode HCL file"},
		{"invalid suffix", `suffix = "_gen_test.go"`, "invalid configuration"},
		{"invalid qualifier", `qualifier = "not ident"`, "invalid configuration"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), config.DefaultFile, tc.content)

			_, _, err := NewLoader().Load(context.Background(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestEvaluator_String(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr string
	}{
		{"literal", `header = "plain"`, "plain", ""},
		{"function", `header = "pkg ${upper(env.GOPACKAGE)}"`, "pkg CMDS", ""},
		{"number converts", `header = 42`, "42", ""},
		{"unknown variable", `header = "${vars.x}"`, "", "Unknown variable"},
		{"null", `header = null`, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := writeConfig(t, t.TempDir(), config.DefaultFile, tc.header)
			m, eval, err := NewLoader().Load(context.Background(), path)
			require.NoError(t, err)
			if m.Header == nil {
				// A null header is treated as unset.
				assert.Empty(t, tc.want)
				return
			}

			// --- Act ---
			got, err := eval.String(context.Background(), m.Header, config.Env{GoPackage: "cmds"})

			// --- Assert ---
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
