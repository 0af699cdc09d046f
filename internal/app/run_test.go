package app

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/scan"
)

const greetSource = `package cmds

//nusig:make GreetSignature r#"greet [name: string, --loud(-l)]: nothing -> string"#
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRun_GeneratesFiles(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{
		"cmds/greet.go": greetSource,
		"cmds/plain.go": "package cmds\n\nfunc Plain() {}\n",
	})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}, Workers: 2})

	// --- Act ---
	report, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	res := report.Files[0]
	assert.Equal(t, filepath.Join(root, "cmds", "greet_nusig.go"), res.Output)
	assert.Equal(t, 1, res.Vars)
	assert.True(t, res.Written)
	assert.Empty(t, res.Failures)

	out := readFile(t, res.Output)
	assert.True(t, strings.HasPrefix(out, "// Code generated by nusig. DO NOT EDIT.\n\npackage cmds\n"))
	assert.Contains(t, out, `import "github.com/vk/nusig/signature"`)
	assert.Contains(t, out, "var GreetSignature = func() *signature.Signature {")
	assert.Contains(t, out, `sig := signature.Build("greet")`)
	_, err = parser.ParseFile(token.NewFileSet(), res.Output, out, parser.AllErrors)
	assert.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "cmds", "plain_nusig.go"))
}

func TestRun_IsIdempotent(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{"greet.go": greetSource})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})
	_, err := a.Run(context.Background())
	require.NoError(t, err)
	first := readFile(t, filepath.Join(root, "greet_nusig.go"))

	// --- Act ---
	report, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.False(t, report.Files[0].Written)
	assert.Equal(t, first, readFile(t, filepath.Join(root, "greet_nusig.go")))
}

func TestRun_FailuresStillWriteSignals(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{
		"cmds.go": `package cmds

//nusig:make Good "good []"
//nusig:make Bad r#"extern bad [x: nope]"#
`,
	})
	a, logs := SetupAppTest(t, Config{Paths: []string{root}})

	// --- Act ---
	report, err := a.Run(context.Background())

	// --- Assert ---
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr), "expected a GenerationError, got %v", err)
	require.Len(t, genErr.Failures, 1)
	assert.Equal(t, "Bad", genErr.Failures[0].Directive.Var)
	assert.Contains(t, err.Error(), "Unknown type")

	require.NotNil(t, report)
	out := readFile(t, report.Files[0].Output)
	assert.Contains(t, out, `var Good = func() *signature.Signature {`)
	assert.Contains(t, out, "var Bad = func() *signature.Signature {\n\tvar _ struct{} = ")
	assert.Contains(t, logs.String(), "cannot generate Bad")
	assert.Contains(t, logs.String(), "Unknown type")
}

func TestRun_DirectiveErrorStops(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n\n//nusig:make 9lives \"x []\"\n"})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})

	_, err := a.Run(context.Background())

	var derr *scan.DirectiveError
	require.True(t, errors.As(err, &derr), "expected a DirectiveError, got %v", err)
	assert.NoFileExists(t, filepath.Join(root, "a_nusig.go"))
}

func TestRun_RemovesOutputWhenDirectivesRemoved(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{"cmds/greet.go": greetSource})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})
	_, err := a.Run(context.Background())
	require.NoError(t, err)
	output := filepath.Join(root, "cmds", "greet_nusig.go")
	require.FileExists(t, output)
	require.NoError(t, os.WriteFile(filepath.Join(root, "cmds", "greet.go"), []byte("package cmds\n\nvar X = 1\n"), 0o600))

	// --- Act ---
	report, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.Equal(t, []string{output}, report.Removed)
	assert.NoFileExists(t, output)
}

func TestRun_DuplicateVarAcrossFiles(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{
		"cmds/a.go": `package cmds

//nusig:make Greet "greet []"
`,
		"cmds/b.go": `package cmds

var _ = 1

//nusig:make Greet "hello []"
`,
	})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})

	// --- Act ---
	_, err := a.Run(context.Background())

	// --- Assert ---
	var derr *scan.DirectiveError
	require.True(t, errors.As(err, &derr), "expected a DirectiveError, got %v", err)
	assert.Equal(t, "Greet is already generated at a.go:3", derr.Msg)
	assert.Equal(t, filepath.Join(root, "cmds", "b.go"), derr.Pos.Filename)
	assert.NoFileExists(t, filepath.Join(root, "cmds", "a_nusig.go"))
	assert.NoFileExists(t, filepath.Join(root, "cmds", "b_nusig.go"))
}

func TestRun_SameVarInOtherPackages(t *testing.T) {
	root := writeTree(t, map[string]string{
		"one/a.go": `package one

//nusig:make Greet "greet []"
`,
		"two/a.go": `package two

//nusig:make Greet "greet []"
`,
	})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})

	report, err := a.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, report.Files, 2)
}

func TestGenerateFile_ChecksSiblingSources(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{
		"a.go": `package cmds

//nusig:make Greet "greet []"
`,
		"b.go": `package cmds

//nusig:make Greet "hello []"
`,
	})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})

	// --- Act ---
	res, err := a.generateFile(context.Background(), filepath.Join(root, "b.go"))

	// --- Assert ---
	assert.Nil(t, res)
	var derr *scan.DirectiveError
	require.True(t, errors.As(err, &derr), "expected a DirectiveError, got %v", err)
	assert.Contains(t, derr.Msg, "a.go:3")
}

func TestRun_ConfigFile(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{
		"src/greet.go": greetSource,
		"nusig.hcl": `
qualifier   = "rt"
import_path = "example.com/sigrt"
suffix      = "_sig.go"
header      = "Code generated for ${env.GOPACKAGE}/${env.GOFILE}. DO NOT EDIT."
`,
	})
	a, _ := SetupAppTest(t, Config{
		Paths:      []string{filepath.Join(root, "src")},
		ConfigFile: filepath.Join(root, "nusig.hcl"),
	})

	// --- Act ---
	report, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, filepath.Join(root, "src", "greet_sig.go"), report.Files[0].Output)
	out := readFile(t, report.Files[0].Output)
	assert.Contains(t, out, "// Code generated for cmds/greet.go. DO NOT EDIT.")
	assert.Contains(t, out, `import rt "example.com/sigrt"`)
	assert.Contains(t, out, "func() *rt.Signature {")
}

func TestRun_OverridesBeatConfigFile(t *testing.T) {
	root := writeTree(t, map[string]string{"nusig.hcl": `qualifier = "rt"`})

	a, _ := SetupAppTest(t, Config{
		Paths:      []string{root},
		ConfigFile: filepath.Join(root, "nusig.hcl"),
		Qualifier:  "sig",
	})

	assert.Equal(t, "sig", a.Settings().Qualifier)
}

func TestRun_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"greet.go": greetSource})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatch_RegeneratesOnChange(t *testing.T) {
	// --- Arrange ---
	root := writeTree(t, map[string]string{"greet.go": greetSource})
	a, _ := SetupAppTest(t, Config{Paths: []string{root}})
	ready := make(chan struct{})
	a.ready = func() { close(ready) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()
	<-ready
	require.FileExists(t, filepath.Join(root, "greet_nusig.go"))

	// --- Act ---
	lsPath := filepath.Join(root, "ls.go")
	require.NoError(t, os.WriteFile(lsPath, []byte("package cmds\n\n//nusig:make LsSignature \"ls [--all(-a)]\"\n"), 0o600))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "ls_nusig.go"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(lsPath))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "ls_nusig.go"))
		return os.IsNotExist(err)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.go"), []byte("package cmds\n"), 0o600))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "greet_nusig.go"))
		return os.IsNotExist(err)
	}, 5*time.Second, 20*time.Millisecond)

	// --- Assert ---
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop after cancellation")
	}
}
