package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nusig/internal/ctxlog"
	"github.com/vk/nusig/internal/dsl"
	"github.com/vk/nusig/internal/gofile"
	"github.com/vk/nusig/internal/scan"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of one generation pass.
type Report struct {
	// Files holds one entry per source file with directives, in scan order.
	Files []*FileResult
	// Removed lists outputs deleted because their source no longer carries
	// directives.
	Removed []string
}

// Failures collects the failed directives of every file.
func (r *Report) Failures() []Failure {
	var out []Failure
	for _, f := range r.Files {
		out = append(out, f.Failures...)
	}
	return out
}

// GenerationError is returned by Run when at least one directive produced a
// signal fragment. The generated files are still written.
type GenerationError struct {
	Failures []Failure
}

func (e *GenerationError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("%s: %s: %v", f.Directive.Pos, f.Directive.Var, f.Err)
	}
	return fmt.Sprintf("%d signatures could not be generated", len(e.Failures))
}

// Run executes one generation pass over the configured paths. Files are
// scanned and then generated in parallel, bounded by Config.Workers. A
// variable declared by two files of one package fails the pass before
// anything is written.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	files, err := scan.Files(a.settings.Suffix, a.cfg.Paths...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Discovered Go files.", "count", len(files))

	sources := make([]*scan.File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := readSource(path)
			sources[i] = f
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkPackageVars(sources); err != nil {
		return nil, err
	}

	results := make([]*FileResult, len(files))
	removed := make([]bool, len(files))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if sources[i] == nil {
				ok, err := a.removeStale(gctx, path)
				removed[i] = ok
				return err
			}
			res, err := a.generate(gctx, sources[i])
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	written := 0
	for i, res := range results {
		if removed[i] {
			report.Removed = append(report.Removed, gofile.OutputPath(files[i], a.settings.Suffix))
		}
		if res == nil {
			continue
		}
		report.Files = append(report.Files, res)
		if res.Written {
			written++
		}
	}

	failures := report.Failures()
	for _, f := range failures {
		a.printFailure(f)
	}
	a.logger.Info("Generation finished.", "files", len(report.Files), "written", written, "removed", len(report.Removed), "failures", len(failures))

	if len(failures) > 0 {
		return report, &GenerationError{Failures: failures}
	}
	return report, nil
}

// printFailure writes a failure to the output, with a source snippet when the
// signature text itself was rejected.
func (a *App) printFailure(f Failure) {
	fmt.Fprintf(a.outW, "%s: cannot generate %s\n", f.Directive.Pos, f.Directive.Var)
	var perr *dsl.ParseError
	if errors.As(f.Err, &perr) {
		if err := perr.WriteDiagnostics(a.outW, 0, false); err == nil {
			return
		}
	}
	fmt.Fprintf(a.outW, "  %v\n", f.Err)
}
