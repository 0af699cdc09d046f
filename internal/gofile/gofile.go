// Package gofile assembles the Go file written next to a source file that
// carries directives.
package gofile

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"strconv"
	"strings"
)

// Var is one generated package-level variable.
type Var struct {
	Name string
	Expr string
}

// File describes a generated file.
type File struct {
	// Header is written as a line comment above the package clause. Every
	// line of it is commented.
	Header     string
	Package    string
	ImportPath string
	// Qualifier is the name the expressions use for ImportPath.
	Qualifier string
	Vars      []Var
}

// Render produces the gofmt-formatted source of f.
func Render(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("generated file has no package name")
	}
	if len(f.Vars) == 0 {
		return nil, fmt.Errorf("generated file for package %s has no variables", f.Package)
	}

	var b bytes.Buffer
	for _, line := range strings.Split(strings.TrimRight(f.Header, "\n"), "\n") {
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// " + line + "\n")
	}
	b.WriteString("\npackage " + f.Package + "\n\n")

	if f.Qualifier == path.Base(f.ImportPath) {
		b.WriteString("import " + strconv.Quote(f.ImportPath) + "\n\n")
	} else {
		b.WriteString("import " + f.Qualifier + " " + strconv.Quote(f.ImportPath) + "\n\n")
	}

	for i, v := range f.Vars {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("var " + v.Name + " = " + v.Expr + "\n")
	}

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated file for package %s: %w", f.Package, err)
	}
	return src, nil
}

// OutputPath is the generated file for source, e.g. greet.go becomes
// greet_nusig.go for the suffix _nusig.go.
func OutputPath(source, suffix string) string {
	return strings.TrimSuffix(source, ".go") + suffix
}
