package dsl

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nusig/internal/model"
	"github.com/vk/nusig/signature"
)

// modelOpts compares signature types and values structurally.
var modelOpts = cmp.Options{
	cmp.Comparer(signature.TypesEqual),
	cmp.Comparer(signature.ValuesEqual),
}

func mustParse(t *testing.T, src string) *model.SignatureModel {
	t.Helper()
	_, m, diags := Parse([]byte(src))
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %s", diags.Error())
	require.NotNil(t, m)
	return m
}

func TestParse_Greet(t *testing.T) {
	// --- Arrange ---
	src := `# Greets someone.
#
# Says hello politely.
extern greet [
    name: string   # who to greet
    --loud(-l)     # shout
    count?: int
    times = 1
] : nothing -> string
`
	want := &model.SignatureModel{
		Name:             "greet",
		Description:      "Greets someone.",
		ExtraDescription: "Says hello politely.",
		InputOutputTypes: []signature.InOut{{In: signature.TypeNothing, Out: signature.TypeString}},
		RequiredPositional: []model.PositionalArg{
			{Name: "name", Description: "who to greet", Type: signature.TypeString},
		},
		OptionalPositional: []model.OptionalPositionalArg{
			{Name: "count", Form: model.DeclaredType{Decl: signature.TypeInt}},
			{Name: "times", Form: model.DefaultValue{Value: signature.Int(1)}},
		},
		RestPositional: model.DefaultRest(),
		Named: []model.Flag{
			{Long: "loud", Short: 'l', Description: "shout"},
		},
	}

	// --- Act ---
	name, got, diags := Parse([]byte(src))

	// --- Assert ---
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "greet", name)
	if diff := cmp.Diff(want, got, modelOpts); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ImplicitExtern(t *testing.T) {
	m := mustParse(t, "greet []")

	assert.Equal(t, "greet", m.Name)
	assert.Empty(t, m.RequiredPositional)
	assert.True(t, m.RestPositional.IsDefault())
}

func TestParse_QuotedName(t *testing.T) {
	m := mustParse(t, `extern "git push" [remote: string];`)
	assert.Equal(t, "git push", m.Name)
}

func TestParse_DetachedComment(t *testing.T) {
	m := mustParse(t, "# stray\n\nextern t []")
	assert.Empty(t, m.Description)
}

func TestParse_MultilineParamDescription(t *testing.T) {
	m := mustParse(t, `extern t [
    a: int  # first
            # second
    b
]`)

	require.Len(t, m.RequiredPositional, 2)
	assert.Equal(t, "first\nsecond", m.RequiredPositional[0].Description)
	assert.Empty(t, m.RequiredPositional[1].Description)
	assert.Equal(t, signature.TypeAny, m.RequiredPositional[1].Type)
}

func TestParse_RestAndFlags(t *testing.T) {
	m := mustParse(t, `extern cp [
    ...files: path
    --out(-o): path = "a.txt"
    -v
    --level = 3
]`)

	want := &model.RestArg{Name: "files", Type: signature.TypeFilepath}
	if diff := cmp.Diff(want, m.RestPositional, modelOpts); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, m.Named, 3)
	assert.Equal(t, "out", m.Named[0].Long)
	assert.Equal(t, 'o', m.Named[0].Short)
	assert.True(t, signature.ValuesEqual(signature.String("a.txt"), m.Named[0].Default))

	assert.Equal(t, 'v', m.Named[1].Short)
	assert.True(t, m.Named[1].IsSwitch())

	assert.Equal(t, signature.TypeInt, m.Named[2].ValueType, "flag type is inferred from the default")
}

func TestParse_IOTypeList(t *testing.T) {
	m := mustParse(t, "extern t [] : [nothing -> string, list<int>->table]")

	require.Len(t, m.InputOutputTypes, 2)
	assert.Equal(t, "list<int>", m.InputOutputTypes[1].In.String())
	assert.Equal(t, "table", m.InputOutputTypes[1].Out.String())
}

func TestParse_Types(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"list", "list"},
		{"list<int>", "list<int>"},
		{"list< list<string> >", "list<list<string>>"},
		{"record<a: int, b: list<string>>", "record<a: int, b: list<string>>"},
		{`record<"a b": int, c>`, `record<"a b": int, c: any>`},
		{"table<name: string>", "table<name: string>"},
		{"cell-path", "cell-path"},
		{"date", "datetime"},
		{"path", "path"},
		{"external", "external"},
		{"oneof<int, string>", "oneof<int, string>"},
		{"oneof<int list<string>>", "oneof<int, list<string>>"},
		{"closure", "closure"},
		{"closure()", "closure()"},
		{"closure(int)", "closure(int)"},
		{"closure(int, record<a: string>)", "closure(int, record<a: string>)"},
		{"list<oneof<closure(any), nothing>>", "list<oneof<closure(any), nothing>>"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			m := mustParse(t, "extern t [x: "+tc.src+"]")
			require.Len(t, m.RequiredPositional, 1)
			assert.Equal(t, tc.want, m.RequiredPositional[0].Type.String())
		})
	}
}

func TestParse_Values(t *testing.T) {
	tests := []struct {
		src  string
		want signature.Value
	}{
		{"1", signature.Int(1)},
		{"-42", signature.Int(-42)},
		{"1_000", signature.Int(1000)},
		{"0x1f", signature.Int(31)},
		{"0b101", signature.Int(5)},
		{"1.5", signature.Float(1.5)},
		{"1e3", signature.Float(1000)},
		{"inf", signature.Float(math.Inf(1))},
		{"-inf", signature.Float(math.Inf(-1))},
		{"10kb", signature.Filesize(10_000)},
		{"1KiB", signature.Filesize(1024)},
		{"2min", signature.Duration(int64(2 * time.Minute))},
		{"1.5sec", signature.Duration(int64(1500 * time.Millisecond))},
		{"true", signature.Bool(true)},
		{"null", signature.Nothing()},
		{`"a\nb\u{e9}"`, signature.String("a\nbé")},
		{`'raw\n'`, signature.String(`raw\n`)},
		{"`tick`", signature.String("tick")},
		{"[1 2, 3]", signature.List(signature.Int(1), signature.Int(2), signature.Int(3))},
		{"[]", signature.List()},
		{`{a: 1, "b c": "x"}`, signature.Record([]string{"a", "b c"}, []signature.Value{signature.Int(1), signature.String("x")})},
		{"1..5", signature.NewIntRange(signature.Int(1), signature.Int(1), signature.Int(5), signature.Inclusive)},
		{"5..1", signature.NewIntRange(signature.Int(5), signature.Int(-1), signature.Int(1), signature.Inclusive)},
		{"1..<5", signature.NewIntRange(signature.Int(1), signature.Int(1), signature.Int(5), signature.RightExclusive)},
		{"1..", signature.NewIntRange(signature.Int(1), signature.Int(1), signature.Nothing(), signature.Inclusive)},
		{"1..3..9", signature.NewIntRange(signature.Int(1), signature.Int(2), signature.Int(9), signature.Inclusive)},
		{"0.5..2.5", signature.NewFloatRange(signature.Float(0.5), signature.Float(1), signature.Float(2.5), signature.Inclusive)},
		{"0x[ff 00]", signature.Binary([]byte{0xff, 0x00})},
		{"$.a.0?", signature.CellPath(signature.StringMember("a", false), signature.IntMember(0, true))},
		{"2024-01-02", signature.FixedDate(2024, 1, 2, 0, 0, 0, 0, 0)},
		{"2024-01-02T03:04:05+02:00", signature.FixedDate(2024, 1, 2, 3, 4, 5, 0, 2*3600)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			m := mustParse(t, "extern t [x = "+tc.src+"]")
			require.Len(t, m.OptionalPositional, 1)
			form, ok := m.OptionalPositional[0].Form.(model.DefaultValue)
			require.True(t, ok, "expected a default value, got %T", m.OptionalPositional[0].Form)
			assert.True(t, signature.ValuesEqual(tc.want, form.Value), "want %#v, got %#v", tc.want, form.Value)
		})
	}
}

func TestParse_NaN(t *testing.T) {
	m := mustParse(t, "extern t [x = NaN]")
	v := m.OptionalPositional[0].Form.(model.DefaultValue).Value.(signature.FloatValue)
	assert.True(t, math.IsNaN(v.Val))
}

func TestParse_ListOfRecordsIsTableTyped(t *testing.T) {
	m := mustParse(t, "extern t [x: table<a: int> = [{a: 1}, {a: 2}]]")

	v := m.OptionalPositional[0].Form.(model.DefaultValue).Value
	_, isList := v.(signature.ListValue)
	assert.True(t, isList)
	assert.Equal(t, "table<a: int>", v.Type().String())
}

func TestParse_LenientDefaults(t *testing.T) {
	srcs := []string{
		"extern t [x: number = 1]",
		"extern t [x: number = 1.5]",
		"extern t [x: float = 1]",
		"extern t [x: path = 'a/b']",
		"extern t [x: glob = '*.go']",
		"extern t [x: any = [1 'a']]",
		"extern t [x: int = null]",
		"extern t [x: record<a: int> = {a: 1, b: 2}]",
		"extern t [x: oneof<int, string> = 'a']",
		"extern t [x: oneof<list<int>, nothing> = [1 2]]",
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			mustParse(t, src)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		summary string
	}{
		{"empty", "", "Missing statement"},
		{"only comments", "# nothing here\n", "Missing statement"},
		{"two statements", "extern a []\nextern b []", "Extra statement"},
		{"wrong statement", "def foo [] {}", "Unexpected statement"},
		{"missing name", "extern [x]", "Missing command name"},
		{"missing list", "extern greet", "Missing parameter list"},
		{"unknown type", "extern t [x: foo]", "Unknown type"},
		{"type mismatch", `extern t [x: int = "s"]`, "Type mismatch"},
		{"duplicate name", "extern t [x, x]", "Duplicate parameter"},
		{"duplicate short", "extern t [--a(-x), --b(-x)]", "Duplicate parameter"},
		{"flag shadows positional", "extern t [x, --x]", "Duplicate parameter"},
		{"two rest", "extern t [...a, ...b]", "Multiple rest parameters"},
		{"rest default", "extern t [...a = 1]", "Invalid rest parameter"},
		{"required after optional", "extern t [a?: int, b: int]", "Misplaced parameter"},
		{"positional after rest", "extern t [...a, b]", "Misplaced parameter"},
		{"unclosed", "extern t [x", "Unclosed parameter list"},
		{"bad unit", "extern t [x = 5zz]", "Invalid value"},
		{"bad escape", `extern t [x = "\q"]`, "Invalid escape"},
		{"missing arrow", "extern t [x] : int", "Missing arrow"},
		{"zero step", "extern t [x = 1..1..5]", "Invalid value"},
		{"odd binary", "extern t [x = 0x[f]]", "Invalid binary"},
		{"long short flag", "extern t [-ab]", "Invalid flag"},
		{"bare oneof", "extern t [x: oneof]", "Missing opening angle bracket"},
		{"empty oneof", "extern t [x: oneof<>]", "Empty oneof"},
		{"unclosed closure", "extern t [x: closure(int]", "Missing type"},
		{"oneof mismatch", "extern t [x: oneof<int, bool> = 'a']", "Type mismatch"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, m, diags := Parse([]byte(tc.src))
			assert.Nil(t, m)
			require.True(t, diags.HasErrors())
			assert.Equal(t, tc.summary, diags[0].Summary, diags.Error())
		})
	}
}

func TestParse_DiagnosticRange(t *testing.T) {
	_, _, diags := ParseFile("sig.nu", []byte("extern t [x: foo]"))

	require.Len(t, diags, 1)
	subj := diags[0].Subject
	require.NotNil(t, subj)
	assert.Equal(t, "sig.nu", subj.Filename)
	assert.Equal(t, 1, subj.Start.Line)
	assert.Equal(t, 14, subj.Start.Column)
	assert.Equal(t, 17, subj.End.Column)
}

func TestParseString_WrapsDiagnostics(t *testing.T) {
	// --- Act ---
	_, err := ParseString("sig.nu", "extern t [x: foo]")

	// --- Assert ---
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "sig.nu:1,14-17: Unknown type")

	var buf bytes.Buffer
	require.NoError(t, perr.WriteDiagnostics(&buf, 80, false))
	assert.Contains(t, buf.String(), "Unknown type")
	assert.Contains(t, buf.String(), "sig.nu")
}

func TestParse_IsIndependentPerCall(t *testing.T) {
	first := mustParse(t, "extern a [x: int]")
	second := mustParse(t, "extern b [y: string]")

	assert.Equal(t, "x", first.RequiredPositional[0].Name)
	assert.Equal(t, "y", second.RequiredPositional[0].Name)
}
