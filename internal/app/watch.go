package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/pipegen/internal/ctxlog"
)

// Watch runs Generate once, then again every time an input changes, until
// ctx is canceled. Bursts of file events within the debounce window cause
// a single rebuild. Rebuild failures are logged and do not stop watching.
// All rebuilds run on the calling goroutine.
func (a *App) Watch(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	if _, err := a.startHealthServer(); err != nil {
		return err
	}
	defer a.closeHealthServer()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, in := range a.config.Inputs {
		dir, err := watchDir(in)
		if err != nil {
			return err
		}
		if err := addRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("👀 Watching inputs.", "inputs", a.config.Inputs, "debounce", a.config.Debounce)

	a.rebuild(ctx)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped.")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				watchCreated(logger, watcher, ev.Name)
			}
			if !a.sources.Supports(ev.Name) || a.isOutput(ev.Name) {
				continue
			}
			logger.Debug("Input changed.", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(a.config.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-timer.C:
			a.rebuild(ctx)
		}
	}
}

// watchCreated starts watching a directory created under a watched root.
// A failure is logged and watching continues for everything else.
func watchCreated(logger *slog.Logger, w *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := addRecursive(w, path); err != nil {
		logger.Warn("Failed to watch new directory.", "path", path, "error", err)
	}
}

func (a *App) rebuild(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	if err := a.Generate(ctx); err != nil {
		a.rebuilds.WithLabelValues("error").Inc()
		logger.Error("Rebuild failed.", "error", err)
		return
	}
	a.rebuilds.WithLabelValues("ok").Inc()
	logger.Info("Rebuilt outputs.", "duration", time.Since(start))
}

// isOutput reports whether path lies in the output directory, so that
// writing plan YAML next to YAML inputs does not retrigger a rebuild.
func (a *App) isOutput(path string) bool {
	if a.config.OutputDir == "" {
		return false
	}
	out, err := filepath.Abs(a.config.OutputDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(out, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchDir is the directory to watch for an input: the input itself for a
// directory, its parent for a file.
func watchDir(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("input path not found: %s", input)
		}
		return "", fmt.Errorf("error accessing path %s: %w", input, err)
	}
	if info.IsDir() {
		return input, nil
	}
	return filepath.Dir(input), nil
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}
