package scan

import (
	"errors"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	// --- Arrange ---
	src := `package cmds

//nusig:make GreetSignature r#"greet [name: string]"#
var unrelated = 1

// Doc comment.
//nusig:make lsSignature "ls [--all(-a)]"

/*nusig:make Multi r#"
extern multi [
    x: int  # the x
]
"#*/

//nusig:makeNot a directive
// nusig:make Spaced is just prose
`

	// --- Act ---
	f, err := ParseFile(token.NewFileSet(), "cmds.go", []byte(src))

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "cmds", f.Package)
	require.Len(t, f.Directives, 3)

	assert.Equal(t, "GreetSignature", f.Directives[0].Var)
	assert.Equal(t, `r#"greet [name: string]"#`, f.Directives[0].Args)
	assert.Equal(t, 3, f.Directives[0].Pos.Line)
	assert.Equal(t, "cmds.go", f.Directives[0].Pos.Filename)

	assert.Equal(t, "lsSignature", f.Directives[1].Var)
	assert.Equal(t, `"ls [--all(-a)]"`, f.Directives[1].Args)

	assert.Equal(t, "Multi", f.Directives[2].Var)
	assert.Equal(t, "r#\"\nextern multi [\n    x: int  # the x\n]\n\"#", f.Directives[2].Args)
}

func TestParseFile_NoDirectives(t *testing.T) {
	f, err := ParseFile(token.NewFileSet(), "a.go", []byte("package a\n// nothing here\n"))

	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "package a\n//nusig:make\n", "missing variable name"},
		{"bad name", "package a\n//nusig:make 1abc \"x []\"\n", `"1abc" is not a Go identifier`},
		{"missing literal", "package a\n//nusig:make Sig   \n", "missing signature literal for Sig"},
		{"duplicate", "package a\n//nusig:make Sig \"a []\"\n//nusig:make Sig \"b []\"\n", "Sig is already generated at line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFile(token.NewFileSet(), "a.go", []byte(tc.src))

			var derr *DirectiveError
			require.True(t, errors.As(err, &derr), "expected a DirectiveError, got %v", err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), "a.go:")
		})
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	_, err := ParseFile(token.NewFileSet(), "a.go", []byte("package a\n//nusig:make S \"a []\"\nfunc {\n"))

	assert.Error(t, err)
}

func TestFiles(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"a.go", "a_nusig.go", "a_test.go", "pkg/b.go"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0o600))
	}

	// --- Act ---
	files, err := Files("_nusig.go", root, filepath.Join(root, "a.go"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.go"), filepath.Join(root, "pkg", "b.go")}, files)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.go")
	require.NoError(t, os.WriteFile(path, []byte("package x\n\n//nusig:make S \"s []\"\n"), 0o600))

	f, err := ReadFile(path)

	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, path, f.Path)
	assert.Len(t, f.Directives, 1)
}
