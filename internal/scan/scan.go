// Package scan finds //nusig:make directives in Go source files.
//
// A directive is a line comment of the form
//
//	//nusig:make VarName <literal>
//
// with no space after the slashes, the way //go:generate is written. The
// literal is everything after the variable name, passed on untouched. A
// signature that spans several lines goes in a block comment:
//
//	/*nusig:make GreetSignature r#"
//	extern greet [
//	    name: string  # who to greet
//	]
//	"#*/
package scan

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"strings"
	"unicode"

	"github.com/vk/nusig/internal/fsutil"
)

const (
	// Prefix starts every line directive.
	Prefix = "//nusig:make"
	// BlockPrefix starts every block directive.
	BlockPrefix = "/*nusig:make"
)

// Directive is one request to generate a signature variable.
type Directive struct {
	Var  string
	Args string
	Pos  token.Position
}

// File is a Go source file that carries at least one directive.
type File struct {
	Path       string
	Package    string
	Directives []Directive
}

// DirectiveError reports a malformed directive.
type DirectiveError struct {
	Pos token.Position
	Msg string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Files lists the Go files under paths that may carry directives. Generated
// files (ending in suffix) and test files are left out. Paths may name files
// or directories; the result keeps the order of paths.
func Files(suffix string, paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".go", "_test.go", suffix)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	return files, nil
}

// ReadFile reads and parses path. It returns nil when the file has no
// directives.
func ReadFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(token.NewFileSet(), path, src)
}

// ParseFile extracts the directives of one file. Sources without the prefix
// are not parsed at all.
func ParseFile(fset *token.FileSet, path string, src []byte) (*File, error) {
	if !bytes.Contains(src, []byte("nusig:make")) {
		return nil, nil
	}
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	out := &File{Path: path, Package: f.Name.Name}
	vars := make(map[string]token.Position)
	for _, group := range f.Comments {
		for _, c := range group.List {
			rest, ok := directiveText(c.Text)
			if !ok {
				continue
			}
			pos := fset.Position(c.Slash)
			d, err := parseDirective(rest, pos)
			if err != nil {
				return nil, err
			}
			if prev, dup := vars[d.Var]; dup {
				return nil, &DirectiveError{Pos: pos, Msg: fmt.Sprintf("%s is already generated at line %d", d.Var, prev.Line)}
			}
			vars[d.Var] = pos
			out.Directives = append(out.Directives, d)
		}
	}
	if len(out.Directives) == 0 {
		return nil, nil
	}
	return out, nil
}

// directiveText returns the text after the prefix of a directive comment.
func directiveText(comment string) (string, bool) {
	rest, ok := strings.CutPrefix(comment, Prefix)
	if !ok {
		if rest, ok = strings.CutPrefix(comment, BlockPrefix); !ok {
			return "", false
		}
		rest = strings.TrimSuffix(rest, "*/")
	}
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return "", false
	}
	return rest, true
}

func parseDirective(rest string, pos token.Position) (Directive, error) {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		end = len(rest)
	}
	name, args := rest[:end], rest[end:]
	if name == "" {
		return Directive{}, &DirectiveError{Pos: pos, Msg: "missing variable name"}
	}
	if !token.IsIdentifier(name) {
		return Directive{}, &DirectiveError{Pos: pos, Msg: fmt.Sprintf("%q is not a Go identifier", name)}
	}
	args = strings.TrimSpace(args)
	if args == "" {
		return Directive{}, &DirectiveError{Pos: pos, Msg: fmt.Sprintf("missing signature literal for %s", name)}
	}
	return Directive{Var: name, Args: args, Pos: pos}, nil
}
