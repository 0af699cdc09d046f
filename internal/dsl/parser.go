// Package dsl parses the signature language: a single extern statement with
// an optional leading doc comment, a bracketed parameter list and an optional
// input/output type section.
//
//	# Greets someone.
//	extern greet [
//	    name: string        # who to greet
//	    --loud(-l)          # shout
//	    count?: int = 1
//	] : nothing -> string
package dsl

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/nusig/internal/model"
	"github.com/vk/nusig/signature"
)

// DefaultFilename labels diagnostics for text that has no file of its own.
const DefaultFilename = "<signature>"

type paramKind int

const (
	paramPositional paramKind = iota
	paramRest
	paramFlag
)

// param is a parameter as written, before it is sorted into the model.
type param struct {
	kind     paramKind
	name     string
	short    rune
	optional bool
	typ      signature.Type
	def      signature.Value
	desc     string
	rng      hcl.Range
}

type parser struct {
	*scanner
	params []param
}

// Parse parses src as a signature. On failure the model is nil and the
// diagnostics describe the first problem found.
func Parse(src []byte) (string, *model.SignatureModel, hcl.Diagnostics) {
	return ParseFile(DefaultFilename, src)
}

// ParseFile is Parse with a filename for the diagnostics.
func ParseFile(filename string, src []byte) (string, *model.SignatureModel, hcl.Diagnostics) {
	p := &parser{scanner: newScanner(filename, src)}
	m, err := p.parseStatement()
	if err != nil {
		return "", nil, p.diags
	}
	return m.Name, m, nil
}

// ParseString parses src and wraps any diagnostics in a ParseError.
func ParseString(filename, src string) (*model.SignatureModel, error) {
	_, m, diags := ParseFile(filename, []byte(src))
	if diags.HasErrors() {
		return nil, &ParseError{Filename: filename, Source: []byte(src), Diags: diags}
	}
	return m, nil
}

func (p *parser) parseStatement() (*model.SignatureModel, error) {
	desc, extra := p.parseDocComment()
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(p.pos, "Missing statement", "Expected a single extern statement, found nothing.")
	}

	name, err := p.parseHead()
	if err != nil {
		return nil, err
	}

	m := model.New(name)
	m.Description = desc
	m.ExtraDescription = extra

	p.skipInline()
	if p.peek() != '[' {
		return nil, p.errorf(p.pos, "Missing parameter list", "Expected a bracketed parameter list after the name %q.", name)
	}
	p.advance()
	if err := p.parseParams(); err != nil {
		return nil, err
	}
	if err := p.buildParams(m); err != nil {
		return nil, err
	}

	p.skipInline()
	if p.consume(":") {
		io, err := p.parseIOTypes()
		if err != nil {
			return nil, err
		}
		m.InputOutputTypes = io
	}
	p.skipInline()
	p.consume(";")

	// Only blank lines and comments may follow.
	for {
		p.skipSpace()
		if p.peek() != '#' {
			break
		}
		p.readComment()
	}
	if !p.eof() {
		return nil, p.errorf(p.pos, "Extra statement", "Only one extern statement is expected.")
	}
	return m, nil
}

// parseDocComment collects the comment lines directly above the statement. A
// blank line detaches the comments read so far. The first paragraph is the
// description, the rest is the extra description.
func (p *parser) parseDocComment() (string, string) {
	var lines []string
	for {
		p.skipInline()
		switch p.peek() {
		case '#':
			lines = append(lines, p.readComment())
			p.consume("\n")
			continue
		case '\n':
			p.advance()
			lines = nil
			continue
		}
		break
	}

	for i, l := range lines {
		if l == "" {
			return strings.Join(lines[:i], "\n"), strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	return strings.Join(lines, "\n"), ""
}

// parseHead reads the statement keyword and command name. The keyword may be
// omitted: `greet [...]` is read as `extern greet [...]`.
func (p *parser) parseHead() (string, error) {
	start := p.pos
	if c := p.peek(); c == '"' || c == '\'' || c == '`' {
		return p.parseQuotedName()
	}
	word := p.readWhile(func(r rune) bool {
		return r != ' ' && r != '\t' && r != '\r' && r != '\n' && r != '[' && r != ';'
	})
	if word == "" {
		return "", p.errorf(start, "Missing command name", "Expected the name of the external command.")
	}

	if word != "extern" {
		p.skipInline()
		if p.peek() == '[' {
			return word, nil
		}
		return "", p.errorf(start, "Unexpected statement", "Expected an extern statement, found %q.", word)
	}

	p.skipInline()
	start = p.pos
	if c := p.peek(); c == '"' || c == '\'' || c == '`' {
		return p.parseQuotedName()
	}
	name := p.readWhile(func(r rune) bool {
		return r != ' ' && r != '\t' && r != '\r' && r != '\n' && r != '[' && r != ';'
	})
	if name == "" {
		return "", p.errorf(start, "Missing command name", "Expected the name of the external command after extern.")
	}
	return name, nil
}

func (p *parser) parseQuotedName() (string, error) {
	start := p.pos
	v, err := p.parseString()
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", p.errorf(start, "Missing command name", "The command name must not be empty.")
	}
	return v, nil
}

func (p *parser) parseParams() error {
	for {
		p.skipSeparators()
		switch c := p.peek(); {
		case p.eof():
			return p.errorf(p.pos, "Unclosed parameter list", "Expected ']' to close the parameter list.")
		case c == ']':
			p.advance()
			return nil
		case c == '#':
			p.attachComment(p.readComment())
		case p.hasPrefix("..."):
			if err := p.parseRest(); err != nil {
				return err
			}
		case p.hasPrefix("--"):
			if err := p.parseLongFlag(); err != nil {
				return err
			}
		case c == '-':
			if err := p.parseShortFlag(); err != nil {
				return err
			}
		default:
			if err := p.parsePositional(); err != nil {
				return err
			}
		}
	}
}

// attachComment adds a comment to the description of the last parameter.
func (p *parser) attachComment(text string) {
	if len(p.params) == 0 {
		return
	}
	last := &p.params[len(p.params)-1]
	if last.desc == "" {
		last.desc = text
	} else {
		last.desc += "\n" + text
	}
}

func (p *parser) parsePositional() error {
	start := p.pos
	name := p.readIdent()
	if name == "" {
		return p.errorf(start, "Invalid parameter", "Expected a parameter name.")
	}
	optional := p.consume("?")
	typ, def, err := p.parseTypeAndDefault()
	if err != nil {
		return err
	}
	p.params = append(p.params, param{
		kind:     paramPositional,
		name:     name,
		optional: optional || def != nil,
		typ:      typ,
		def:      def,
		rng:      p.rangeFrom(start),
	})
	return nil
}

func (p *parser) parseRest() error {
	start := p.pos
	p.consume("...")
	name := p.readIdent()
	if name == "" {
		return p.errorf(start, "Invalid parameter", "Expected a name after '...'.")
	}
	typ, def, err := p.parseTypeAndDefault()
	if err != nil {
		return err
	}
	if def != nil {
		return p.errorf(start, "Invalid rest parameter", "The rest parameter %q cannot have a default value.", name)
	}
	p.params = append(p.params, param{kind: paramRest, name: name, typ: typ, rng: p.rangeFrom(start)})
	return nil
}

func (p *parser) parseLongFlag() error {
	start := p.pos
	p.consume("--")
	long := p.readIdent()
	if long == "" {
		return p.errorf(start, "Invalid flag", "Expected a flag name after '--'.")
	}

	var short rune
	p.skipInline()
	if p.consume("(") {
		shortStart := p.pos
		if !p.consume("-") {
			return p.errorf(shortStart, "Invalid flag", "Expected a short flag like (-s).")
		}
		r := p.peekRune()
		if !isIdentRune(r) || r == '-' {
			return p.errorf(p.pos, "Invalid flag", "A short flag must be a single letter or digit.")
		}
		p.advance()
		short = r
		if err := p.expect(")", "closing parenthesis"); err != nil {
			return err
		}
	}

	typ, def, err := p.parseTypeAndDefault()
	if err != nil {
		return err
	}
	p.params = append(p.params, param{
		kind:  paramFlag,
		name:  long,
		short: short,
		typ:   typ,
		def:   def,
		rng:   p.rangeFrom(start),
	})
	return nil
}

func (p *parser) parseShortFlag() error {
	start := p.pos
	p.consume("-")
	r := p.peekRune()
	if !isIdentRune(r) || r == '-' {
		return p.errorf(start, "Invalid flag", "A short flag must be a single letter or digit.")
	}
	p.advance()
	if isIdentRune(p.peekRune()) {
		return p.errorf(start, "Invalid flag", "A short flag must be a single character; use --name for long flags.")
	}
	typ, def, err := p.parseTypeAndDefault()
	if err != nil {
		return err
	}
	p.params = append(p.params, param{
		kind:  paramFlag,
		short: r,
		typ:   typ,
		def:   def,
		rng:   p.rangeFrom(start),
	})
	return nil
}

// parseTypeAndDefault reads the optional ": type" and "= value" parts of a
// parameter and checks that they agree.
func (p *parser) parseTypeAndDefault() (signature.Type, signature.Value, error) {
	var typ signature.Type
	var def signature.Value

	p.skipInline()
	if p.consume(":") {
		p.skipInline()
		t, err := p.parseType()
		if err != nil {
			return nil, nil, err
		}
		typ = t
	}
	p.skipInline()
	if p.peek() == '=' {
		start := p.pos
		p.advance()
		p.skipInline()
		v, err := p.parseValue()
		if err != nil {
			return nil, nil, err
		}
		if typ != nil && !compatible(typ, v) {
			return nil, nil, p.errorf(start, "Type mismatch",
				"The default value has type %s, which does not match the declared type %s.", v.Type(), typ)
		}
		def = v
	}
	return typ, def, nil
}

// buildParams sorts the written parameters into the model and enforces the
// ordering and uniqueness rules.
func (p *parser) buildParams(m *model.SignatureModel) error {
	names := make(map[string]bool)
	shorts := make(map[rune]bool)
	var rest *param

	for i := range p.params {
		pr := &p.params[i]
		key := pr.name
		if key == "" {
			key = string(pr.short)
		}
		if names[key] {
			return p.errorAt(pr.rng, "Duplicate parameter", "The parameter name %q is already used.", key)
		}
		names[key] = true

		switch pr.kind {
		case paramRest:
			if rest != nil {
				return p.errorAt(pr.rng, "Multiple rest parameters", "Only one rest parameter is allowed; %q is already declared.", rest.name)
			}
			rest = pr
			m.RestPositional = &model.RestArg{Name: pr.name, Description: pr.desc, Type: orAny(pr.typ)}

		case paramPositional:
			if rest != nil {
				return p.errorAt(pr.rng, "Misplaced parameter", "The positional parameter %q follows the rest parameter.", pr.name)
			}
			if !pr.optional {
				if len(m.OptionalPositional) > 0 {
					return p.errorAt(pr.rng, "Misplaced parameter", "The required parameter %q follows an optional parameter.", pr.name)
				}
				m.RequiredPositional = append(m.RequiredPositional, model.PositionalArg{
					Name:        pr.name,
					Description: pr.desc,
					Type:        orAny(pr.typ),
				})
				continue
			}
			var form model.OptionalForm = model.DeclaredType{Decl: orAny(pr.typ)}
			if pr.def != nil {
				form = model.DefaultValue{Value: pr.def}
			}
			m.OptionalPositional = append(m.OptionalPositional, model.OptionalPositionalArg{
				Name:        pr.name,
				Description: pr.desc,
				Form:        form,
			})

		case paramFlag:
			if pr.short != 0 {
				if shorts[pr.short] {
					return p.errorAt(pr.rng, "Duplicate parameter", "The short flag -%c is already used.", pr.short)
				}
				shorts[pr.short] = true
			}
			typ := pr.typ
			if typ == nil && pr.def != nil {
				typ = pr.def.Type()
			}
			m.Named = append(m.Named, model.Flag{
				Long:        pr.name,
				Short:       pr.short,
				ValueType:   typ,
				Description: pr.desc,
				Default:     pr.def,
			})
		}
	}

	if m.RestPositional == nil {
		m.RestPositional = model.DefaultRest()
	}
	return nil
}

// errorAt records a diagnostic for an already parsed range.
func (p *parser) errorAt(rng hcl.Range, summary, format string, args ...any) error {
	start := rng.Start
	saved := p.pos
	p.pos = rng.End
	err := p.errorf(start, summary, format, args...)
	p.pos = saved
	return err
}

func (p *parser) parseIOTypes() ([]signature.InOut, error) {
	p.skipInline()
	if p.peek() != '[' {
		pair, err := p.parseIOPair()
		if err != nil {
			return nil, err
		}
		return []signature.InOut{pair}, nil
	}
	p.advance()

	var out []signature.InOut
	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(p.pos, "Unclosed type list", "Expected ']' to close the input/output types.")
		}
		if p.consume("]") {
			return out, nil
		}
		pair, err := p.parseIOPair()
		if err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
}

func (p *parser) parseIOPair() (signature.InOut, error) {
	in, err := p.parseType()
	if err != nil {
		return signature.InOut{}, err
	}
	p.skipSpace()
	if err := p.expect("->", "arrow"); err != nil {
		return signature.InOut{}, err
	}
	p.skipSpace()
	out, err := p.parseType()
	if err != nil {
		return signature.InOut{}, err
	}
	return signature.InOut{In: in, Out: out}, nil
}

func orAny(t signature.Type) signature.Type {
	if t == nil {
		return signature.TypeAny
	}
	return t
}
