package app

import (
	"context"
	"fmt"

	"github.com/vk/pipegen/internal/compiler"
	"github.com/vk/pipegen/internal/config"
	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/plan"
	"golang.org/x/sync/errgroup"
)

// Compiled is the outcome of compiling every schema of one input file.
type Compiled struct {
	Path    string
	Results []*compiler.Result
}

// Plans returns the plans of the file in source order.
func (c *Compiled) Plans() []*plan.Plan {
	out := make([]*plan.Plan, len(c.Results))
	for i, r := range c.Results {
		out[i] = r.Plan
	}
	return out
}

// Compile loads and compiles every input. Files are compiled concurrently,
// up to the configured parallelism; each compilation is itself sequential.
// Results keep input order.
func (a *App) Compile(ctx context.Context) ([]*Compiled, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	files, err := a.sources.Resolve(ctx, a.config.Inputs...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files found in %v", a.config.Inputs)
	}
	logger.Debug("Compiling schema files.", "count", len(files), "parallelism", a.config.Parallelism)

	out := make([]*Compiled, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Parallelism)
	for i, path := range files {
		g.Go(func() error {
			src, err := a.sources.LoadFile(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load schema file '%s': %w", path, err)
			}
			c, err := a.compileSource(gctx, src)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	schemas := 0
	for _, c := range out {
		schemas += len(c.Results)
	}
	logger.Info("Schemas compiled.", "files", len(out), "schemas", schemas)
	return out, nil
}

func (a *App) compileSource(ctx context.Context, src *config.Source) (*Compiled, error) {
	c := &Compiled{Path: src.Path, Results: make([]*compiler.Result, 0, len(src.Trees))}
	for _, tree := range src.Trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := compiler.Compile(ctx, tree, compiler.Options{Mode: a.mode, Metrics: a.metrics})
		if err != nil {
			return nil, fmt.Errorf("%s: schema %q: %w", src.Path, tree.Name, err)
		}
		c.Results = append(c.Results, res)
	}
	return c, nil
}

func allPlans(compiled []*Compiled) []*plan.Plan {
	var out []*plan.Plan
	for _, c := range compiled {
		out = append(out, c.Plans()...)
	}
	return out
}
