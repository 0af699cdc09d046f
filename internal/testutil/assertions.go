package testutil

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/codegen"
	"github.com/vk/nusig/internal/codegen/codegentest"
	"github.com/vk/nusig/signature"
)

// AssertGenerated checks that the generated file at path exists, starts with
// a generated-code header and declares package pkg.
func AssertGenerated(t *testing.T, path, pkg string) {
	t.Helper()

	src, err := os.ReadFile(path)
	require.NoError(t, err, "expected generated file %s", path)
	require.True(t, strings.HasPrefix(string(src), "// Code generated "), "generated file %s has no header", path)
	require.Contains(t, string(src), "\npackage "+pkg+"\n")
}

// EvalVar evaluates the initializer of name in the generated file at path.
func EvalVar(t *testing.T, path, name string) *signature.Signature {
	t.Helper()

	expr, ok := GeneratedVars(t, path)[name]
	require.True(t, ok, "variable %s not found in %s", name, path)
	sig, err := codegentest.Eval(expr, codegen.DefaultQualifier)
	require.NoError(t, err, "variable %s does not evaluate to a signature", name)
	return sig
}

// AssertSignalled checks that name in the generated file at path is a signal
// fragment whose message contains want.
func AssertSignalled(t *testing.T, path, name, want string) {
	t.Helper()

	expr, ok := GeneratedVars(t, path)[name]
	require.True(t, ok, "variable %s not found in %s", name, path)
	_, err := codegentest.Eval(expr, codegen.DefaultQualifier)
	var sig *codegentest.SignalError
	require.True(t, errors.As(err, &sig), "variable %s is not a signal fragment: %v", name, err)
	require.Contains(t, sig.Msg, want)
}
