package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nusig/internal/config"
	"github.com/vk/nusig/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the shape of one config file. Every attribute is optional.
type fileRoot struct {
	Qualifier  *string        `hcl:"qualifier,optional"`
	ImportPath *string        `hcl:"import_path,optional"`
	Suffix     *string        `hcl:"suffix,optional"`
	Header     hcl.Expression `hcl:"header,optional"`
}

// Load parses every existing file in paths and merges them over the defaults.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Evaluator, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.Defaults()
	parser := hclparse.NewParser()

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Config file not found, skipping.", "path", path)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error accessing config file %s: %w", path, err)
		}

		file, diags := parser.ParseHCL(src, path)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}
		merge(model, &root)
		logger.Debug("Config file merged.", "path", path)
	}

	if err := model.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("HCL loading complete.", "qualifier", model.Qualifier, "import_path", model.ImportPath, "suffix", model.Suffix)
	return model, NewEvaluator(), nil
}

func merge(m *config.Model, root *fileRoot) {
	if root.Qualifier != nil {
		m.Qualifier = *root.Qualifier
	}
	if root.ImportPath != nil {
		m.ImportPath = *root.ImportPath
	}
	if root.Suffix != nil {
		m.Suffix = *root.Suffix
	}
	if isSet(root.Header) {
		m.Header = root.Header
	}
}

// isSet reports whether expr came from the file. gohcl fills a missing
// optional expression attribute with a static null.
func isSet(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	if len(expr.Variables()) > 0 {
		return true
	}
	v, diags := expr.Value(nil)
	return diags.HasErrors() || !v.IsNull()
}
