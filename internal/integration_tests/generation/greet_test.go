package integration_tests

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/testutil"
	"github.com/vk/nusig/signature"
)

var sigOpts = cmp.Options{
	cmp.Comparer(signature.TypesEqual),
	cmp.Comparer(signature.ValuesEqual),
}

// Test for: a documented multi-line signature generates an equivalent value
func TestGeneration_Greet_EndToEnd(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"cmds/greet.go": `package cmds

/*nusig:make GreetSignature r#"
# Greets someone.
#
# Prints a friendly greeting.
extern greet [
    name: string            # who to greet
    --loud(-l)              # shout the greeting
    --times(-t): int = 1    # how many times
    ...rest: string         # ignored words
]: [nothing -> string, string -> string]
"#*/
`,
	}
	want := signature.Build("greet").
		WithCategory(signature.CategoryExperimental).
		WithDescription("Greets someone.").
		WithExtraDescription("Prints a friendly greeting.").
		WithInputOutputTypes([]signature.InOut{
			{In: signature.TypeNothing, Out: signature.TypeString},
			{In: signature.TypeString, Out: signature.TypeString},
		})
	want.Named = []signature.Flag{
		{Long: "loud", Short: 'l', Desc: "shout the greeting"},
		{Long: "times", Short: 't', Arg: signature.TypeInt, Desc: "how many times", Default: signature.Int(1)},
	}
	want.RequiredPositional = []signature.PositionalArg{{Name: "name", Desc: "who to greet", Shape: signature.TypeString}}
	want.RestPositional = &signature.PositionalArg{Name: "rest", Desc: "ignored words", Shape: signature.TypeString}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	out := result.Path("cmds/greet_nusig.go")
	testutil.AssertGenerated(t, out, "cmds")

	got := testutil.EvalVar(t, out, "GreetSignature")
	if diff := cmp.Diff(want, got, sigOpts); diff != "" {
		t.Errorf("signature mismatch (-want +got):\n%s", diff)
	}
}
