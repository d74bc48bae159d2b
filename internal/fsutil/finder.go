// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/pipegen/internal/ctxlog"
)

// FindFilesByExtension recursively searches the given root path for all files
// ending with any of the given extensions. It returns their full paths in
// lexical order.
func FindFilesByExtension(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasExtension(d.Name(), extensions) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ResolvePaths takes files and directories and returns every matching file.
// A file given explicitly must carry one of the extensions. Duplicates are
// dropped, first occurrence wins.
func ResolvePaths(ctx context.Context, paths []string, extensions ...string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, path := range paths {
		logger.Debug("Resolving input path.", "path", path)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input path not found: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := FindFilesByExtension(path, extensions...)
			if err != nil {
				return nil, fmt.Errorf("error scanning directory %s: %w", path, err)
			}
			logger.Debug("Path is a directory, scanned for schema files.", "directory", path, "count", len(files))
			for _, f := range files {
				add(f)
			}
			continue
		}

		if !hasExtension(path, extensions) {
			return nil, fmt.Errorf("specified file %s is not one of: %s", path, strings.Join(extensions, ", "))
		}
		add(path)
	}
	return out, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
