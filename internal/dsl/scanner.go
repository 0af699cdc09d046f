package dsl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
)

// scanner is a byte cursor that tracks hcl positions for diagnostics.
type scanner struct {
	file  string
	src   []byte
	pos   hcl.Pos
	diags hcl.Diagnostics
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{
		file: file,
		src:  src,
		pos:  hcl.InitialPos,
	}
}

func (s *scanner) eof() bool { return s.pos.Byte >= len(s.src) }

// peek returns the current byte, or 0 at the end of input.
func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos.Byte]
}

// peekAt returns the byte n positions ahead, or 0 past the end.
func (s *scanner) peekAt(n int) byte {
	if s.pos.Byte+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos.Byte+n]
}

func (s *scanner) peekRune() rune {
	if s.eof() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(s.src[s.pos.Byte:])
	return r
}

func (s *scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(string(s.src[s.pos.Byte:]), p)
}

// advance moves past one rune.
func (s *scanner) advance() {
	if s.eof() {
		return
	}
	r, size := utf8.DecodeRune(s.src[s.pos.Byte:])
	s.pos.Byte += size
	if r == '\n' {
		s.pos.Line++
		s.pos.Column = 1
	} else {
		s.pos.Column++
	}
}

func (s *scanner) consume(p string) bool {
	if !s.hasPrefix(p) {
		return false
	}
	for i, n := 0, utf8.RuneCountInString(p); i < n; i++ {
		s.advance()
	}
	return true
}

// skipInline skips blanks that do not end a line.
func (s *scanner) skipInline() {
	for c := s.peek(); c == ' ' || c == '\t' || c == '\r'; c = s.peek() {
		s.advance()
	}
}

// skipSpace skips all whitespace, including newlines.
func (s *scanner) skipSpace() {
	for c := s.peek(); c == ' ' || c == '\t' || c == '\r' || c == '\n'; c = s.peek() {
		s.advance()
	}
}

// skipSeparators skips whitespace and commas.
func (s *scanner) skipSeparators() {
	for c := s.peek(); c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ','; c = s.peek() {
		s.advance()
	}
}

// readComment consumes a '#' comment up to the end of the line and returns
// its trimmed text.
func (s *scanner) readComment() string {
	s.advance()
	start := s.pos.Byte
	for !s.eof() && s.peek() != '\n' {
		s.advance()
	}
	return strings.TrimSpace(string(s.src[start:s.pos.Byte]))
}

// readWhile consumes runes accepted by ok.
func (s *scanner) readWhile(ok func(r rune) bool) string {
	start := s.pos.Byte
	for !s.eof() && ok(s.peekRune()) {
		s.advance()
	}
	return string(s.src[start:s.pos.Byte])
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *scanner) readIdent() string { return s.readWhile(isIdentRune) }

func (s *scanner) rangeFrom(start hcl.Pos) hcl.Range {
	end := s.pos
	if end.Byte == start.Byte && !s.eof() {
		// Point at the offending character rather than an empty span.
		_, size := utf8.DecodeRune(s.src[end.Byte:])
		end.Byte += size
		end.Column++
	}
	return hcl.Range{Filename: s.file, Start: start, End: end}
}

// errorf records a diagnostic spanning from start to the cursor and returns
// errAbort.
func (s *scanner) errorf(start hcl.Pos, summary, format string, args ...any) error {
	rng := s.rangeFrom(start)
	s.diags = append(s.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  &rng,
	})
	return errAbort
}

// expect consumes p or records a diagnostic.
func (s *scanner) expect(p, what string) error {
	if s.consume(p) {
		return nil
	}
	return s.errorf(s.pos, "Missing "+what, "Expected %q here.", p)
}
