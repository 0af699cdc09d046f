package literal

import (
	"strings"
)

// SplitToken extracts the single literal token at the start of args. Anything
// but whitespace after the token is an error, reported before any decoding
// happens.
func SplitToken(args string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", errNotLiteral
	}

	var end int
	var err error
	switch args[0] {
	case 'r':
		end, err = rawEnd(args)
	case '"':
		end, err = escapedEnd(args)
	default:
		return "", errNotLiteral
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(args[end:]) != "" {
		return "", errTrailing
	}
	return args[:end], nil
}

// rawEnd returns the index just past the closing delimiter of a raw literal.
func rawEnd(s string) (int, error) {
	fence, open, err := rawOpening(s)
	if err != nil {
		return 0, err
	}
	closing := `"` + fence
	idx := strings.Index(s[open:], closing)
	if idx < 0 {
		return 0, &LiteralFormatError{Reason: "found an unterminated raw literal"}
	}
	return open + idx + len(closing), nil
}

// escapedEnd returns the index just past the closing quote of an escaped
// literal. Escapes are skipped, not validated.
func escapedEnd(s string) (int, error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, &LiteralFormatError{Reason: "found an unterminated literal"}
}
