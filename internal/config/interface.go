package config

import (
	"context"

	"github.com/vk/pipegen/internal/decl"
)

// Loader is the interface for a format-specific schema front-end.
type Loader interface {
	// Extensions lists the file extensions the loader handles, with the
	// leading dot.
	Extensions() []string
	// Load parses the given files and returns their declaration trees in
	// order.
	Load(ctx context.Context, paths ...string) ([]*decl.Tree, error)
}
