package dsl

import (
	"github.com/vk/nusig/signature"
)

var scalarTypes = map[string]signature.Type{
	"any":       signature.TypeAny,
	"binary":    signature.TypeBinary,
	"bool":      signature.TypeBool,
	"cell-path": signature.TypeCellPath,
	"closure":   signature.TypeClosure,
	"datetime":  signature.TypeDate,
	"date":      signature.TypeDate,
	"directory": signature.TypeDirectory,
	"duration":  signature.TypeDuration,
	"error":     signature.TypeError,
	"external":  signature.TypeExternalArgument,
	"filesize":  signature.TypeFilesize,
	"float":     signature.TypeFloat,
	"glob":      signature.TypeGlob,
	"int":       signature.TypeInt,
	"nothing":   signature.TypeNothing,
	"number":    signature.TypeNumber,
	"path":      signature.TypeFilepath,
	"range":     signature.TypeRange,
	"string":    signature.TypeString,
}

// parseType reads a type expression such as int, list<string>,
// record<name: string, age: int>, oneof<int, string> or closure(int).
func (p *parser) parseType() (signature.Type, error) {
	start := p.pos
	word := p.readTypeWord()
	if word == "" {
		return nil, p.errorf(start, "Missing type", "Expected a type.")
	}

	switch word {
	case "list":
		if !p.consume("<") {
			return signature.ListType{}, nil
		}
		p.skipSpace()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(">", "closing angle bracket"); err != nil {
			return nil, err
		}
		return signature.ListType{Elem: elem}, nil

	case "record":
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return signature.RecordType{Fields: fields}, nil

	case "table":
		cols, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return signature.TableType{Columns: cols}, nil

	case "oneof":
		if err := p.expect("<", "opening angle bracket"); err != nil {
			return nil, err
		}
		alts, err := p.parseTypeList('>')
		if err != nil {
			return nil, err
		}
		if len(alts) == 0 {
			return nil, p.errorf(start, "Empty oneof", "A oneof type needs at least one alternative.")
		}
		return signature.OneOfType{Alts: alts}, nil

	case "closure":
		if !p.consume("(") {
			return signature.TypeClosure, nil
		}
		params, err := p.parseTypeList(')')
		if err != nil {
			return nil, err
		}
		return signature.ClosureType{Params: params}, nil
	}

	if t, ok := scalarTypes[word]; ok {
		return t, nil
	}
	return nil, p.errorf(start, "Unknown type", "%q is not a known type.", word)
}

// readTypeWord reads a type keyword. A hyphen only continues the word when a
// letter follows, so "int->string" stops before the arrow.
func (p *parser) readTypeWord() string {
	start := p.pos.Byte
	for !p.eof() {
		r := p.peekRune()
		if r == '-' {
			if next := p.peekAt(1); (next < 'a' || next > 'z') && (next < 'A' || next > 'Z') {
				break
			}
		} else if !isIdentRune(r) {
			break
		}
		p.advance()
	}
	return string(p.src[start:p.pos.Byte])
}

// parseTypeList reads comma or space separated types up to and including
// the closing delimiter. The result is never nil.
func (p *parser) parseTypeList(closing byte) ([]signature.Type, error) {
	types := []signature.Type{}
	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(p.pos, "Unclosed type", "Expected %q to close the type list.", string(closing))
		}
		if p.peek() == closing {
			p.advance()
			return types, nil
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
}

// parseFields reads an optional <name: type, ...> section. A field without a
// type is of type any.
func (p *parser) parseFields() ([]signature.Field, error) {
	if !p.consume("<") {
		return nil, nil
	}
	var fields []signature.Field
	seen := make(map[string]bool)
	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(p.pos, "Unclosed type", "Expected '>' to close the field list.")
		}
		if p.consume(">") {
			return fields, nil
		}

		start := p.pos
		var name string
		if c := p.peek(); c == '"' || c == '\'' || c == '`' {
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			name = s
		} else {
			name = p.readIdent()
			if name == "" {
				return nil, p.errorf(start, "Invalid field", "Expected a field name.")
			}
		}
		if seen[name] {
			return nil, p.errorf(start, "Duplicate field", "The field %q is declared twice.", name)
		}
		seen[name] = true

		p.skipSpace()
		typ := signature.Type(signature.TypeAny)
		if p.consume(":") {
			p.skipSpace()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		fields = append(fields, signature.Field{Name: name, Type: typ})
	}
}

// compatible reports whether v may serve as the default of a parameter
// declared with type decl.
func compatible(decl signature.Type, v signature.Value) bool {
	if _, ok := v.(signature.NothingValue); ok {
		return true
	}
	switch decl.Kind() {
	case signature.KindAny:
		return true
	case signature.KindNumber, signature.KindFloat:
		switch v.(type) {
		case signature.IntValue, signature.FloatValue:
			return true
		}
		return false
	case signature.KindFilepath, signature.KindDirectory, signature.KindGlob, signature.KindExternalArgument:
		switch v.(type) {
		case signature.StringValue, signature.GlobValue:
			return true
		}
		return false
	case signature.KindRange:
		switch v.(type) {
		case signature.IntRangeValue, signature.FloatRangeValue:
			return true
		}
		return false
	case signature.KindList:
		l, ok := v.(signature.ListValue)
		if !ok {
			return false
		}
		elem := decl.(signature.ListType).Elem
		if elem == nil {
			return true
		}
		for _, e := range l.Vals {
			if !compatible(elem, e) {
				return false
			}
		}
		return true
	case signature.KindRecord:
		r, ok := v.(signature.RecordValue)
		return ok && recordFits(decl.(signature.RecordType).Fields, r)
	case signature.KindTable:
		return tableFits(decl.(signature.TableType).Columns, v)
	case signature.KindOneOf:
		for _, alt := range decl.(signature.OneOfType).Alts {
			if compatible(alt, v) {
				return true
			}
		}
		return false
	case signature.KindClosure:
		_, ok := v.(signature.ClosureValue)
		return ok
	}
	return signature.TypesEqual(decl, v.Type())
}

// recordFits checks the declared fields present in r; extra or missing
// columns are allowed.
func recordFits(fields []signature.Field, r signature.RecordValue) bool {
	for _, f := range fields {
		if cell, ok := r.Get(f.Name); ok && !compatible(f.Type, cell) {
			return false
		}
	}
	return true
}

func tableFits(cols []signature.Field, v signature.Value) bool {
	switch t := v.(type) {
	case signature.ListValue:
		for _, row := range t.Vals {
			r, ok := row.(signature.RecordValue)
			if !ok || !recordFits(cols, r) {
				return false
			}
		}
		return true
	case signature.TableValue:
		return true
	}
	return false
}
