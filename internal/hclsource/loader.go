package hclsource

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
)

// Extension is the file extension handled by this front-end.
const Extension = ".hcl"

// Block types understood inside a pipeline body.
const (
	blockPipeline = "pipeline"
	blockStage    = "stage"
	blockLink     = "link"
	blockProperty = "property"
	attrStages    = "stages"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{Extension}
}

// Load parses every file and returns its trees in file order, then source
// order inside each file.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*decl.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	parser := hclparse.NewParser()
	var trees []*decl.Tree
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", path, err)
		}
		file, diags := parser.ParseHCL(src, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		fileTrees, err := translateFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to translate HCL file %s: %w", path, err)
		}
		logger.Debug("Parsed HCL file.", "path", path, "schemas", len(fileTrees))
		trees = append(trees, fileTrees...)
	}

	logger.Debug("HCL loading complete.", "schemas", len(trees))
	return trees, nil
}

// Parse translates HCL source held in memory.
func Parse(ctx context.Context, filename string, src []byte) ([]*decl.Tree, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	trees, err := translateFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to translate HCL source %s: %w", filename, err)
	}
	ctxlog.FromContext(ctx).Debug("Parsed HCL source.", "filename", filename, "schemas", len(trees))
	return trees, nil
}

func translateFile(file *hcl.File) ([]*decl.Tree, error) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", file.Body)
	}
	t := &translator{src: file.Bytes}

	var trees []*decl.Tree
	for _, item := range ordered(body) {
		switch {
		case item.attr != nil:
			trees = append(trees, &decl.Tree{
				Name:  item.attr.Name,
				Shape: decl.ShapeRecord,
				Pos:   pos(item.attr.NameRange),
			})
		case item.block.Type == blockPipeline:
			tree, err := t.pipeline(item.block)
			if err != nil {
				return nil, err
			}
			trees = append(trees, tree)
		default:
			name := item.block.Type
			if len(item.block.Labels) > 0 {
				name = item.block.Labels[0]
			}
			trees = append(trees, &decl.Tree{
				Name:  name,
				Shape: decl.ShapeUnknown,
				Pos:   pos(item.block.TypeRange),
			})
		}
	}
	return trees, nil
}
