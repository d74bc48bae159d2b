package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/fsutil"
)

// Source is the set of trees loaded from one file.
type Source struct {
	Path  string
	Trees []*decl.Tree
}

// Sources routes files to loaders by extension.
type Sources struct {
	byExt map[string]Loader
}

// NewSources registers loaders. A later loader wins an extension claimed
// by an earlier one.
func NewSources(loaders ...Loader) *Sources {
	s := &Sources{byExt: make(map[string]Loader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			s.byExt[strings.ToLower(ext)] = l
		}
	}
	return s
}

// Extensions returns every registered extension, sorted.
func (s *Sources) Extensions() []string {
	out := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether a file can be loaded.
func (s *Sources) Supports(path string) bool {
	_, ok := s.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Resolve expands paths into the list of loadable files. Directories are
// walked recursively.
func (s *Sources) Resolve(ctx context.Context, paths ...string) ([]string, error) {
	files, err := fsutil.ResolvePaths(ctx, paths, s.Extensions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input paths: %w", err)
	}
	return files, nil
}

// LoadFile parses a single file with the loader registered for its
// extension.
func (s *Sources) LoadFile(ctx context.Context, path string) (*Source, error) {
	l, ok := s.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("no loader for file %s (supported: %s)", path, strings.Join(s.Extensions(), ", "))
	}
	trees, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded schema file.", "path", path, "schemas", len(trees))
	return &Source{Path: path, Trees: trees}, nil
}

// Load resolves paths and loads every file, in path order.
func (s *Sources) Load(ctx context.Context, paths ...string) ([]*Source, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := s.Resolve(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("No schema files found at the specified paths.", "paths", paths)
		return nil, nil
	}

	out := make([]*Source, 0, len(files))
	for _, f := range files {
		src, err := s.LoadFile(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema file '%s': %w", f, err)
		}
		out = append(out, src)
	}
	return out, nil
}
