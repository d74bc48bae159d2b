package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/pipegen/internal/codegen"
	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/plan"
)

// Generate compiles every input and writes the output in the configured
// format: Go source or plan YAML. Without an output directory everything
// goes to the output writer as one file; otherwise one file is written per
// input.
func (a *App) Generate(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	compiled, err := a.Compile(ctx)
	if err != nil {
		return err
	}

	if a.config.OutputDir == "" {
		out, err := a.render(ctx, allPlans(compiled))
		if err != nil {
			return err
		}
		_, err = a.outW.Write(out)
		return err
	}

	if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", a.config.OutputDir, err)
	}
	written := make(map[string]string, len(compiled))
	for _, c := range compiled {
		target := filepath.Join(a.config.OutputDir, a.outputName(c.Path))
		if prev, dup := written[target]; dup {
			return fmt.Errorf("inputs %s and %s both write %s", prev, c.Path, target)
		}
		written[target] = c.Path

		out, err := a.render(ctx, c.Plans())
		if err != nil {
			return fmt.Errorf("%s: %w", c.Path, err)
		}
		if err := os.WriteFile(target, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		logger.Info("Wrote output file.", "input", c.Path, "output", target, "schemas", len(c.Results))
	}
	return nil
}

// Plan writes the plan of every schema to the output writer as YAML.
func (a *App) Plan(ctx context.Context) error {
	compiled, err := a.Compile(ctx)
	if err != nil {
		return err
	}
	return plan.EncodeDocuments(a.outW, allPlans(compiled))
}

func (a *App) render(ctx context.Context, plans []*plan.Plan) ([]byte, error) {
	switch a.config.Format {
	case FormatYAML:
		var buf bytes.Buffer
		if err := plan.EncodeDocuments(&buf, plans); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return codegen.Generate(ctx, codegen.Options{Package: a.config.Package}, plans...)
	}
}

// outputName maps an input file to its output file name.
func (a *App) outputName(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if a.config.Format == FormatYAML {
		return base + ".plan.yaml"
	}
	return base + "_pipeline.go"
}
