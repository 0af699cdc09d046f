// Package literal decodes a captured string literal token into the DSL text
// it denotes.
//
// Two literal forms are accepted:
//
//	"..."          escaped; only \\ \" \n \r \t are recognised
//	r"..." r#"..."#  raw; the run of '#' after r must close the literal
package literal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LiteralFormatError reports a token that is not a single well-formed
// literal.
type LiteralFormatError struct {
	Reason string
}

func (e *LiteralFormatError) Error() string {
	return "make_signature " + e.Reason
}

// EscapeDecodeError reports an unsupported escape in an escaped literal.
type EscapeDecodeError struct {
	Char rune
}

func (e *EscapeDecodeError) Error() string {
	return fmt.Sprintf(`invalid escape sequence: \%c`, e.Char)
}

var (
	errNotLiteral = &LiteralFormatError{Reason: "expects a literal string containing the signature"}
	errTrailing   = &LiteralFormatError{Reason: "only expects a literal string containing the signature"}
)

// Decode returns the text denoted by token, which must be the complete
// literal including its prefix and delimiters.
func Decode(token string) (string, error) {
	if !utf8.ValidString(token) {
		return "", &LiteralFormatError{Reason: "expects the literal to be valid UTF-8"}
	}
	if strings.HasPrefix(token, "r") {
		return decodeRaw(token)
	}
	return decodeEscaped(token)
}

// decodeRaw returns the content between r#..#" and "#..# verbatim.
func decodeRaw(token string) (string, error) {
	fence, open, err := rawOpening(token)
	if err != nil {
		return "", err
	}
	closing := `"` + fence
	if len(token) < open+len(closing) || !strings.HasSuffix(token, closing) {
		return "", &LiteralFormatError{Reason: fmt.Sprintf("expects the raw literal to end with %s", closing)}
	}
	content := token[open : len(token)-len(closing)]
	if strings.Contains(content, closing) {
		return "", errTrailing
	}
	return content, nil
}

// rawOpening validates the r#..#" prefix and returns the fence and the index
// of the first content byte.
func rawOpening(token string) (fence string, open int, err error) {
	i := 1
	for i < len(token) && token[i] == '#' {
		i++
	}
	if i >= len(token) || token[i] != '"' {
		return "", 0, errNotLiteral
	}
	return token[1:i], i + 1, nil
}

func decodeEscaped(token string) (string, error) {
	if len(token) < 2 || token[0] != '"' || token[len(token)-1] != '"' {
		return "", errNotLiteral
	}
	body := token[1 : len(token)-1]

	var b strings.Builder
	b.Grow(len(body))
	escape := false
	for _, c := range body {
		if !escape {
			switch c {
			case '\\':
				escape = true
			case '"':
				return "", errTrailing
			default:
				b.WriteRune(c)
			}
			continue
		}
		switch c {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			return "", &EscapeDecodeError{Char: c}
		}
		escape = false
	}
	if escape {
		return "", &LiteralFormatError{Reason: "expects the literal not to end inside an escape sequence"}
	}
	return b.String(), nil
}
