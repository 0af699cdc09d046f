package dsl

import (
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/nusig/signature"
)

var durationUnits = map[string]int64{
	"ns":  1,
	"us":  int64(time.Microsecond),
	"µs":  int64(time.Microsecond),
	"ms":  int64(time.Millisecond),
	"sec": int64(time.Second),
	"min": int64(time.Minute),
	"hr":  int64(time.Hour),
	"day": 24 * int64(time.Hour),
	"wk":  7 * 24 * int64(time.Hour),
}

var filesizeUnits = map[string]int64{
	"b":   1,
	"kb":  1_000,
	"mb":  1_000_000,
	"gb":  1_000_000_000,
	"tb":  1_000_000_000_000,
	"pb":  1_000_000_000_000_000,
	"eb":  1_000_000_000_000_000_000,
	"kib": 1 << 10,
	"mib": 1 << 20,
	"gib": 1 << 30,
	"tib": 1 << 40,
	"pib": 1 << 50,
	"eib": 1 << 60,
}

var simpleEscapes = map[byte]byte{
	'\\': '\\', '"': '"', '\'': '\'', '/': '/',
	'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
}

var (
	numberWithUnit = regexp.MustCompile(`^([+-]?[0-9][0-9_]*(?:\.[0-9][0-9_]*)?(?:[eE][+-]?[0-9]+)?)([A-Za-zµ]*)$`)
	datePrefix     = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}`)
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseValue reads a literal value.
func (p *parser) parseValue() (signature.Value, error) {
	switch c := p.peek(); {
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseRecord()
	case c == '"' || c == '\'' || c == '`':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return signature.String(s), nil
	case c == '$':
		return p.parseCellPath()
	case p.hasPrefix("0x["):
		return p.parseBinary()
	}

	start := p.pos
	tok := p.readWhile(func(r rune) bool {
		switch r {
		case ' ', '\t', '\r', '\n', ',', ']', '}', '#', ';', ')':
			return false
		}
		return true
	})
	if tok == "" {
		return nil, p.errorf(start, "Missing value", "Expected a value.")
	}
	v, problem := classify(tok)
	if problem != "" {
		return nil, p.errorf(start, "Invalid value", "%s", problem)
	}
	return v, nil
}

// classify turns a bare token into a value. It returns a problem description
// instead of a value when the token is not a valid literal.
func classify(tok string) (signature.Value, string) {
	switch tok {
	case "true":
		return signature.Bool(true), ""
	case "false":
		return signature.Bool(false), ""
	case "null":
		return signature.Nothing(), ""
	case "NaN":
		return signature.Float(math.NaN()), ""
	case "inf", "+inf":
		return signature.Float(math.Inf(1)), ""
	case "-inf":
		return signature.Float(math.Inf(-1)), ""
	}

	if strings.Contains(tok, "..") {
		return parseRange(tok)
	}
	if datePrefix.MatchString(tok) {
		return parseDate(tok)
	}
	if v, ok := parseRadixInt(tok); ok {
		return v, ""
	}

	m := numberWithUnit.FindStringSubmatch(tok)
	if m == nil {
		return nil, "Could not read " + strconv.Quote(tok) + " as a value."
	}
	num, unit := strings.ReplaceAll(m[1], "_", ""), m[2]
	if unit == "" {
		return parseNumber(num)
	}
	if mult, ok := durationUnits[unit]; ok {
		n, problem := scale(num, mult)
		if problem != "" {
			return nil, problem
		}
		return signature.Duration(n), ""
	}
	if mult, ok := filesizeUnits[strings.ToLower(unit)]; ok {
		n, problem := scale(num, mult)
		if problem != "" {
			return nil, problem
		}
		return signature.Filesize(n), ""
	}
	return nil, "Unknown unit " + strconv.Quote(unit) + "."
}

func parseNumber(num string) (signature.Value, string) {
	if !strings.ContainsAny(num, ".eE") {
		i, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return nil, "The integer " + num + " is out of range."
		}
		return signature.Int(i), ""
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, "The number " + num + " is out of range."
	}
	return signature.Float(f), ""
}

// parseRadixInt reads 0x, 0o and 0b integers.
func parseRadixInt(tok string) (signature.Value, bool) {
	neg := strings.HasPrefix(tok, "-")
	body := strings.TrimPrefix(strings.TrimPrefix(tok, "-"), "+")
	if len(body) < 3 || body[0] != '0' {
		return nil, false
	}
	var base int
	switch body[1] {
	case 'x':
		base = 16
	case 'o':
		base = 8
	case 'b':
		base = 2
	default:
		return nil, false
	}
	digits := strings.ReplaceAll(body[2:], "_", "")
	if neg {
		digits = "-" + digits
	}
	i, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return nil, false
	}
	return signature.Int(i), true
}

// scale multiplies a decimal number by a unit size without overflowing.
func scale(num string, mult int64) (int64, string) {
	v, problem := parseNumber(num)
	if problem != "" {
		return 0, problem
	}
	switch n := v.(type) {
	case signature.IntValue:
		if n.Val != 0 && (n.Val > math.MaxInt64/mult || n.Val < math.MinInt64/mult) {
			return 0, "The quantity " + num + " is out of range."
		}
		return n.Val * mult, ""
	case signature.FloatValue:
		f := math.Round(n.Val * float64(mult))
		if f >= math.MaxInt64 || f < math.MinInt64 || math.IsNaN(f) {
			return 0, "The quantity " + num + " is out of range."
		}
		return int64(f), ""
	}
	return 0, "Expected a number."
}

func parseDate(tok string) (signature.Value, string) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, tok)
		if err == nil {
			return signature.DateValue{Val: t}, ""
		}
	}
	return nil, "Could not read " + strconv.Quote(tok) + " as a date."
}

// parseRange reads start..end, start..<end, start.., ..end and the
// start..next..end forms. The step defaults to 1, or -1 when the end lies
// below the start.
func parseRange(tok string) (signature.Value, string) {
	parts := strings.Split(tok, "..")
	if len(parts) > 3 {
		return nil, "Could not read " + strconv.Quote(tok) + " as a range."
	}
	startTok, nextTok, endTok := parts[0], "", parts[len(parts)-1]
	if len(parts) == 3 {
		nextTok = parts[1]
	}

	incl := signature.Inclusive
	switch {
	case strings.HasPrefix(endTok, "<"):
		incl = signature.RightExclusive
		endTok = endTok[1:]
		if endTok == "" {
			return nil, "An exclusive range needs an end."
		}
	case strings.HasPrefix(endTok, "="):
		endTok = endTok[1:]
	}

	if startTok == "" {
		startTok = "0"
	}
	start, problem := rangeNumber(startTok)
	if problem != "" {
		return nil, problem
	}
	var next, end signature.Value = nil, signature.Nothing()
	if nextTok != "" {
		if next, problem = rangeNumber(nextTok); problem != "" {
			return nil, problem
		}
	}
	if endTok != "" {
		if end, problem = rangeNumber(endTok); problem != "" {
			return nil, problem
		}
	}

	if isFloat(start) || isFloat(next) || isFloat(end) {
		return floatRange(start, next, end, incl)
	}
	return intRange(start, next, end, incl)
}

func rangeNumber(tok string) (signature.Value, string) {
	if v, ok := parseRadixInt(tok); ok {
		return v, ""
	}
	v, problem := parseNumber(strings.ReplaceAll(tok, "_", ""))
	if problem != "" {
		return nil, "Could not read " + strconv.Quote(tok) + " as a range bound."
	}
	return v, ""
}

func isFloat(v signature.Value) bool {
	_, ok := v.(signature.FloatValue)
	return ok
}

func intRange(start, next, end signature.Value, incl signature.RangeInclusion) (signature.Value, string) {
	s := start.(signature.IntValue).Val
	step := int64(1)
	if next != nil {
		n := next.(signature.IntValue).Val
		step = n - s
		if (n > s) != (step > 0) {
			return nil, "The range step is out of range."
		}
	} else if e, ok := end.(signature.IntValue); ok && e.Val < s {
		step = -1
	}
	if step == 0 {
		return nil, "A range cannot have a step of zero."
	}
	return signature.NewIntRange(signature.Int(s), signature.Int(step), end, incl), ""
}

func floatRange(start, next, end signature.Value, incl signature.RangeInclusion) (signature.Value, string) {
	s := toFloat(start)
	step := 1.0
	if next != nil {
		step = toFloat(next) - s
	} else if _, ok := end.(signature.NothingValue); !ok && toFloat(end) < s {
		step = -1
	}
	if step == 0 || math.IsNaN(step) {
		return nil, "A range cannot have a step of zero."
	}
	if _, open := end.(signature.NothingValue); !open {
		end = signature.Float(toFloat(end))
	}
	return signature.NewFloatRange(signature.Float(s), signature.Float(step), end, incl), ""
}

func toFloat(v signature.Value) float64 {
	switch n := v.(type) {
	case signature.IntValue:
		return float64(n.Val)
	case signature.FloatValue:
		return n.Val
	}
	return 0
}

func (p *parser) parseList() (signature.Value, error) {
	start := p.pos
	p.advance()
	var vals []signature.Value
	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(start, "Unclosed list", "Expected ']' to close the list.")
		}
		if p.consume("]") {
			return signature.List(vals...), nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
}

func (p *parser) parseRecord() (signature.Value, error) {
	start := p.pos
	p.advance()
	var cols []string
	var vals []signature.Value
	seen := make(map[string]bool)
	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(start, "Unclosed record", "Expected '}' to close the record.")
		}
		if p.consume("}") {
			return signature.Record(cols, vals), nil
		}

		keyStart := p.pos
		var key string
		if c := p.peek(); c == '"' || c == '\'' || c == '`' {
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			key = s
		} else if key = p.readIdent(); key == "" {
			return nil, p.errorf(keyStart, "Invalid record", "Expected a column name.")
		}
		if seen[key] {
			return nil, p.errorf(keyStart, "Duplicate column", "The column %q appears twice.", key)
		}
		seen[key] = true

		p.skipSpace()
		if err := p.expect(":", "colon"); err != nil {
			return nil, err
		}
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		cols = append(cols, key)
		vals = append(vals, v)
	}
}

// parseCellPath reads $.name.0?.other.
func (p *parser) parseCellPath() (signature.Value, error) {
	start := p.pos
	p.advance()
	var members []signature.PathMember
	for p.consume(".") {
		memberStart := p.pos
		var m signature.PathMember
		if c := p.peek(); c == '"' || c == '\'' || c == '`' {
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			m = signature.StringMember(s, false)
		} else {
			word := p.readIdent()
			if word == "" {
				return nil, p.errorf(memberStart, "Invalid cell path", "Expected a column name or row index.")
			}
			if idx, err := strconv.Atoi(word); err == nil && idx >= 0 {
				m = signature.IntMember(idx, false)
			} else {
				m = signature.StringMember(word, false)
			}
		}
		m.Optional = p.consume("?")
		members = append(members, m)
	}
	if len(members) == 0 {
		return nil, p.errorf(start, "Invalid cell path", "A cell path needs at least one member, as in $.name.")
	}
	return signature.CellPath(members...), nil
}

// parseBinary reads 0x[ff 00 1a].
func (p *parser) parseBinary() (signature.Value, error) {
	start := p.pos
	p.consume("0x[")
	var digits strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf(start, "Unclosed binary", "Expected ']' to close the binary literal.")
		}
		c := p.peek()
		switch {
		case c == ']':
			p.advance()
			if digits.Len()%2 != 0 {
				return nil, p.errorf(start, "Invalid binary", "A binary literal needs an even number of hex digits.")
			}
			b, err := hex.DecodeString(digits.String())
			if err != nil {
				return nil, p.errorf(start, "Invalid binary", "%s", err)
			}
			return signature.Binary(b), nil
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ',' || c == '_':
			p.advance()
		case isHexDigit(c):
			digits.WriteByte(c)
			p.advance()
		default:
			return nil, p.errorf(p.pos, "Invalid binary", "%q is not a hex digit.", c)
		}
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// parseString reads a double quoted string with escapes, or a single quoted
// or backtick string taken verbatim.
func (p *parser) parseString() (string, error) {
	start := p.pos
	quote := p.peek()
	p.advance()
	if quote != '"' {
		from := p.pos.Byte
		for !p.eof() && p.peek() != quote {
			p.advance()
		}
		if p.eof() {
			return "", p.errorf(start, "Unclosed string", "Expected %c to close the string.", quote)
		}
		s := string(p.src[from:p.pos.Byte])
		p.advance()
		return s, nil
	}

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf(start, "Unclosed string", "Expected \" to close the string.")
		}
		r := p.peekRune()
		switch r {
		case '"':
			p.advance()
			return b.String(), nil
		case '\\':
			escStart := p.pos
			p.advance()
			if err := p.readEscape(&b, escStart); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
			p.advance()
		}
	}
}

func (p *parser) readEscape(b *strings.Builder, start hcl.Pos) error {
	c := p.peek()
	if out, ok := simpleEscapes[c]; ok {
		b.WriteByte(out)
		p.advance()
		return nil
	}
	if c != 'u' {
		p.advance()
		return p.errorf(start, "Invalid escape", "Unknown escape sequence in string.")
	}
	p.advance()
	if !p.consume("{") {
		return p.errorf(start, "Invalid escape", `Expected \u{...} with hex digits.`)
	}
	hexStart := p.pos.Byte
	for isHexDigit(p.peek()) {
		p.advance()
	}
	digits := string(p.src[hexStart:p.pos.Byte])
	if !p.consume("}") || digits == "" || len(digits) > 6 {
		return p.errorf(start, "Invalid escape", `Expected \u{...} with one to six hex digits.`)
	}
	cp, _ := strconv.ParseUint(digits, 16, 32)
	if !utf8.ValidRune(rune(cp)) {
		return p.errorf(start, "Invalid escape", "U+%X is not a valid character.", cp)
	}
	b.WriteRune(rune(cp))
	return nil
}
