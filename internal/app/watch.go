package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/nusig/internal/ctxlog"
	"github.com/vk/nusig/internal/scan"
)

const debounce = 100 * time.Millisecond

// Watch runs a generation pass and then regenerates each source file as it
// changes, until ctx is cancelled. Directive failures are printed and do not
// stop the loop. Removing a source file, or its last directive, removes
// its output.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if _, err := a.Run(ctx); err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, err := a.watchDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	a.logger.Info("Watching for changes.", "dirs", len(dirs))
	if a.ready != nil {
		a.ready()
	}

	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Watch loop stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if a.isSource(event.Name) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Watcher error.", "error", err)

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) < debounce {
					continue
				}
				delete(pending, path)
				a.regenerate(ctx, path)
			}
		}
	}
}

// regenerate handles one settled change of a source file.
func (a *App) regenerate(ctx context.Context, path string) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if _, err := a.removeStale(ctx, path); err != nil {
			logger.Error("Removing output failed.", "file", path, "error", err)
		}
		return
	}

	res, err := a.generateFile(ctx, path)
	if err != nil {
		logger.Error("Regeneration failed.", "file", path, "error", err)
		return
	}
	if res == nil {
		return
	}
	for _, f := range res.Failures {
		a.printFailure(f)
	}
	if res.Written {
		logger.Info("Regenerated.", "output", res.Output, "vars", res.Vars, "failures", len(res.Failures))
	}
}

func (a *App) isSource(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, a.settings.Suffix)
}

// watchDirs lists every directory that holds a candidate source file, plus
// every configured directory.
func (a *App) watchDirs() ([]string, error) {
	files, err := scan.Files(a.settings.Suffix, a.cfg.Paths...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	for _, p := range a.cfg.Paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			add(filepath.Clean(p))
		}
	}
	for _, f := range files {
		add(filepath.Dir(f))
	}
	return dirs, nil
}
