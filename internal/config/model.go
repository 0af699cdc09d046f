package config

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile       = "nusig.hcl"
	DefaultQualifier  = "signature"
	DefaultImportPath = "github.com/vk/nusig/signature"
	DefaultSuffix     = "_nusig.go"
	DefaultHeader     = "Code generated by nusig. DO NOT EDIT."
)

// Model is the unified, format-agnostic representation of the settings.
type Model struct {
	Qualifier  string
	ImportPath string
	Suffix     string
	// Header is evaluated per generated file; nil means DefaultHeader.
	Header hcl.Expression
}

// Defaults returns a model with every field at its default.
func Defaults() *Model {
	return &Model{
		Qualifier:  DefaultQualifier,
		ImportPath: DefaultImportPath,
		Suffix:     DefaultSuffix,
	}
}

// Validate checks the fields a loader cannot check on its own.
func (m *Model) Validate() error {
	var errs []error
	if !token.IsIdentifier(m.Qualifier) {
		errs = append(errs, fmt.Errorf("qualifier %q is not a Go identifier", m.Qualifier))
	}
	if m.ImportPath == "" {
		errs = append(errs, errors.New("import_path must not be empty"))
	}
	switch {
	case !strings.HasSuffix(m.Suffix, ".go"):
		errs = append(errs, fmt.Errorf("suffix %q must end in .go", m.Suffix))
	case m.Suffix == ".go":
		errs = append(errs, fmt.Errorf("suffix %q would overwrite the sources", m.Suffix))
	case strings.HasSuffix(m.Suffix, "_test.go"):
		errs = append(errs, fmt.Errorf("suffix %q must not produce test files", m.Suffix))
	}
	return errors.Join(errs...)
}

// Env is what a header expression can see about the file being generated,
// exposed to expressions as the env object.
type Env struct {
	GoPackage string
	GoFile    string
}
