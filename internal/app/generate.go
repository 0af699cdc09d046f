package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/nusig/internal/config"
	"github.com/vk/nusig/internal/ctxlog"
	"github.com/vk/nusig/internal/driver"
	"github.com/vk/nusig/internal/gofile"
	"github.com/vk/nusig/internal/scan"
)

// FileResult describes what happened to one source file with directives.
type FileResult struct {
	Source string
	Output string
	Vars   int
	// Failures lists the directives that became signal fragments.
	Failures []Failure
	// Written is false when the output already had the generated content.
	Written bool
}

// Failure is a directive whose signature could not be generated.
type Failure struct {
	Directive scan.Directive
	Err       error
}

// generateFile regenerates the output of one source file, checking its
// variables against the other sources of its package. It returns nil when
// path carries no directives, after removing any output left from earlier
// runs. Directive failures are recorded in the result, not returned.
func (a *App) generateFile(ctx context.Context, path string) (*FileResult, error) {
	f, err := readSource(path)
	if err != nil {
		return nil, err
	}
	if f == nil {
		_, err := a.removeStale(ctx, path)
		return nil, err
	}
	siblings, err := a.packageSources(f)
	if err != nil {
		return nil, err
	}
	if err := checkPackageVars(append(siblings, f)); err != nil {
		return nil, err
	}
	return a.generate(ctx, f)
}

func readSource(path string) (*scan.File, error) {
	f, err := scan.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return f, nil
}

// generate renders and writes the output for f.
func (a *App) generate(ctx context.Context, f *scan.File) (*FileResult, error) {
	ctx = ctxlog.With(ctx, "file", f.Path)
	logger := ctxlog.FromContext(ctx)

	res := &FileResult{Source: f.Path, Output: gofile.OutputPath(f.Path, a.settings.Suffix)}
	vars := make([]gofile.Var, 0, len(f.Directives))
	for _, d := range f.Directives {
		frag := driver.Make(ctxlog.With(ctx, "var", d.Var), d.Args, a.codegenOptions())
		if !frag.OK() {
			res.Failures = append(res.Failures, Failure{Directive: d, Err: frag.Err})
		}
		vars = append(vars, gofile.Var{Name: d.Var, Expr: frag.Source})
	}

	header, err := a.header(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("header for %s: %w", f.Path, err)
	}
	src, err := gofile.Render(gofile.File{
		Header:     header,
		Package:    f.Package,
		ImportPath: a.settings.ImportPath,
		Qualifier:  a.settings.Qualifier,
		Vars:       vars,
	})
	if err != nil {
		return nil, err
	}

	res.Vars = len(vars)
	if res.Written, err = writeIfChanged(res.Output, src); err != nil {
		return nil, err
	}
	logger.Debug("File generated.", "output", res.Output, "vars", res.Vars, "failures", len(res.Failures), "written", res.Written)
	return res, nil
}

// removeStale deletes the output of a source file that no longer carries
// directives. It reports whether a file was removed.
func (a *App) removeStale(ctx context.Context, source string) (bool, error) {
	output := gofile.OutputPath(source, a.settings.Suffix)
	if output == source {
		return false, nil
	}
	err := os.Remove(output)
	switch {
	case err == nil:
		ctxlog.FromContext(ctx).Info("Removed stale output.", "output", output)
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("removing %s: %w", output, err)
}

// packageSources reads the other source files in the directory of f that
// carry directives.
func (a *App) packageSources(f *scan.File) ([]*scan.File, error) {
	dir := filepath.Dir(f.Path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*scan.File
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() || !a.isSource(path) || filepath.Clean(path) == filepath.Clean(f.Path) {
			continue
		}
		sib, err := readSource(path)
		if err != nil {
			return nil, err
		}
		if sib != nil {
			out = append(out, sib)
		}
	}
	return out, nil
}

// checkPackageVars rejects a variable generated by two files of the same
// package. The second declaration in files order is reported.
func checkPackageVars(files []*scan.File) error {
	type pkgVar struct{ dir, pkg, name string }
	seen := make(map[pkgVar]token.Position)
	for _, f := range files {
		if f == nil {
			continue
		}
		dir := filepath.Dir(f.Path)
		for _, d := range f.Directives {
			key := pkgVar{dir: dir, pkg: f.Package, name: d.Var}
			if prev, dup := seen[key]; dup {
				return &scan.DirectiveError{
					Pos: d.Pos,
					Msg: fmt.Sprintf("%s is already generated at %s:%d", d.Var, filepath.Base(prev.Filename), prev.Line),
				}
			}
			seen[key] = d.Pos
		}
	}
	return nil
}

func (a *App) header(ctx context.Context, f *scan.File) (string, error) {
	if a.settings.Header == nil {
		return config.DefaultHeader, nil
	}
	return a.eval.String(ctx, a.settings.Header, config.Env{
		GoPackage: f.Package,
		GoFile:    filepath.Base(f.Path),
	})
}

func writeIfChanged(path string, src []byte) (bool, error) {
	old, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(old, src):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
