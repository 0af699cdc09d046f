// Package codegen lowers a signature model into a Go expression that builds
// the equivalent *signature.Signature at run time.
//
// The expression is an immediately invoked function literal, so it can stand
// anywhere a value is expected, including a package-level var:
//
//	var Greet = func() *signature.Signature {
//		sig := signature.Build("greet").
//			WithCategory(signature.CategoryExperimental)
//		sig.RequiredPositional = []signature.PositionalArg{
//			{Name: "name", Desc: "", Shape: signature.TypeString},
//		}
//		return sig
//	}()
//
// When lowering fails the result is a signal fragment instead: an expression
// of the same shape that parses but does not type check, with the failure
// message quoted in the compiler error.
package codegen

import (
	"strconv"
	"strings"

	"github.com/vk/nusig/internal/model"
)

// DefaultQualifier is the import name used when Options leaves it empty.
const DefaultQualifier = "signature"

// Options tunes the emitted source.
type Options struct {
	// Qualifier is the name the runtime package is imported under.
	Qualifier string
}

func (o Options) qualifier() string {
	if o.Qualifier == "" {
		return DefaultQualifier
	}
	return o.Qualifier
}

// Fragment is the outcome of one generation. Source is always a Go
// expression; Err is set when Source is a signal.
type Fragment struct {
	Source string
	Err    error
}

// OK reports whether the fragment builds a signature.
func (f Fragment) OK() bool { return f.Err == nil }

// Generator lowers models with fixed options. It holds no state between
// calls.
type Generator struct {
	q string
}

// New returns a Generator for opts.
func New(opts Options) *Generator {
	return &Generator{q: opts.qualifier()}
}

// Generate lowers m with the default options.
func Generate(name string, m *model.SignatureModel) Fragment {
	return New(Options{}).Generate(name, m)
}

// Generate lowers m into a construction expression for a signature called
// name. Any value without a Go rendering turns the whole result into a
// signal.
func (g *Generator) Generate(name string, m *model.SignatureModel) Fragment {
	if err := m.Validate(); err != nil {
		return g.Signal(err)
	}
	src, err := g.signature(name, m)
	if err != nil {
		return g.Signal(err)
	}
	return Fragment{Source: src}
}

// Signal returns a fragment that makes the Go type checker report err.
func (g *Generator) Signal(err error) Fragment {
	return Fragment{Source: g.signalSource(err.Error()), Err: err}
}

// Signal is Generator.Signal with the default options.
func Signal(err error) Fragment {
	return New(Options{}).Signal(err)
}

func (g *Generator) signalSource(msg string) string {
	var b strings.Builder
	b.WriteString("func() *" + g.q + ".Signature {\n")
	b.WriteString("\tvar _ struct{} = " + strconv.Quote(msg) + "\n")
	b.WriteString("\treturn nil\n")
	b.WriteString("}()")
	return b.String()
}

// ref qualifies an identifier from the runtime package.
func (g *Generator) ref(ident string) string {
	return g.q + "." + ident
}

func (g *Generator) signature(name string, m *model.SignatureModel) (string, error) {
	var b strings.Builder
	b.WriteString("func() *" + g.ref("Signature") + " {\n")

	chain := []string{"WithCategory(" + g.ref("CategoryExperimental") + ")"}
	if m.Description != "" {
		chain = append(chain, "WithDescription("+strconv.Quote(m.Description)+")")
	}
	if m.ExtraDescription != "" {
		chain = append(chain, "WithExtraDescription("+strconv.Quote(m.ExtraDescription)+")")
	}
	if len(m.InputOutputTypes) > 0 {
		io, err := g.inputOutputTypes(m)
		if err != nil {
			return "", err
		}
		chain = append(chain, "WithInputOutputTypes("+io+")")
	}
	b.WriteString("\tsig := " + g.ref("Build") + "(" + strconv.Quote(name) + ")")
	for _, c := range chain {
		b.WriteString(".\n\t\t" + c)
	}
	b.WriteByte('\n')

	if len(m.Named) > 0 {
		named, err := g.flags(m.Named)
		if err != nil {
			return "", err
		}
		b.WriteString("\tsig.Named = " + named + "\n")
	}
	if len(m.RequiredPositional) > 0 {
		req, err := g.required(m.RequiredPositional)
		if err != nil {
			return "", err
		}
		b.WriteString("\tsig.RequiredPositional = " + req + "\n")
	}
	if len(m.OptionalPositional) > 0 {
		opt, err := g.optional(m.OptionalPositional)
		if err != nil {
			return "", err
		}
		b.WriteString("\tsig.OptionalPositional = " + opt + "\n")
	}
	if r := m.RestPositional; r != nil && !r.IsDefault() {
		rest, err := g.rest(r)
		if err != nil {
			return "", err
		}
		b.WriteString("\tsig.RestPositional = " + rest + "\n")
	}

	b.WriteString("\treturn sig\n")
	b.WriteString("}()")
	return b.String(), nil
}
