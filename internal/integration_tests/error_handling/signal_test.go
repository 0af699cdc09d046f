package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/app"
	"github.com/vk/nusig/internal/scan"
	"github.com/vk/nusig/internal/testutil"
)

// Test for: every failure kind becomes a signal fragment in the output while
// the other variables in the file are still generated
func TestErrorHandling_FailuresBecomeSignals(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"cmds/cmds.go": `package cmds

//nusig:make Good "good [x: int]"
//nusig:make NotALiteral good [x: int]
//nusig:make BadEscape "bad [\q]"
//nusig:make BadSignature r#"bad [x: nope]"#
//nusig:make TwoStatements r#"a []; b []"#
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	var genErr *app.GenerationError
	require.True(t, errors.As(result.Err, &genErr), "expected a GenerationError, got %v", result.Err)
	assert.Len(t, genErr.Failures, 4)

	out := result.Path("cmds/cmds_nusig.go")
	testutil.AssertGenerated(t, out, "cmds")
	assert.Equal(t, "good", testutil.EvalVar(t, out, "Good").Name)
	testutil.AssertSignalled(t, out, "NotALiteral", "")
	testutil.AssertSignalled(t, out, "BadEscape", `\q`)
	testutil.AssertSignalled(t, out, "BadSignature", "Unknown type")
	testutil.AssertSignalled(t, out, "TwoStatements", "error while parsing the signature")
	assert.Contains(t, result.LogOutput, "cannot generate BadSignature")
}

// Test for: a malformed directive fails the run before anything is written
func TestErrorHandling_MalformedDirective(t *testing.T) {
	files := map[string]string{"a/a.go": "package a\n\n//nusig:make\n"}

	result := testutil.RunIntegrationTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "missing variable name")
	assert.NoFileExists(t, result.Path("a/a_nusig.go"))
}

// Test for: an invalid settings file is rejected at startup
func TestErrorHandling_InvalidConfig(t *testing.T) {
	files := map[string]string{"nusig.hcl": `suffix = "_x_test.go"`}

	result := testutil.RunIntegrationTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "must not produce test files")
	assert.Nil(t, result.Report)
}

// Test for: a variable declared by two files of one package stops the pass
// before any output is written
func TestErrorHandling_VarDeclaredTwiceInPackage(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"cmds/a.go": "package cmds\n\n//nusig:make Greet \"greet []\"\n",
		"cmds/b.go": "package cmds\n\n//nusig:make Greet \"greet [name: string]\"\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	var derr *scan.DirectiveError
	require.True(t, errors.As(result.Err, &derr), "expected a DirectiveError, got %v", result.Err)
	assert.Contains(t, derr.Error(), "Greet is already generated at a.go:3")
	assert.NoFileExists(t, result.Path("cmds/a_nusig.go"))
	assert.NoFileExists(t, result.Path("cmds/b_nusig.go"))
}
