// Package compiler is the driver. It runs the schema parser, the name
// resolver, the link analyzer, the property assigner and the plan builder
// in strict sequence and stops at the first phase that reports an error.
package compiler

import (
	"context"
	"time"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/links"
	"github.com/vk/pipegen/internal/plan"
	"github.com/vk/pipegen/internal/props"
	"github.com/vk/pipegen/internal/resolve"
	"github.com/vk/pipegen/internal/schema"
)

// Phase names, as used in logs and metrics.
const (
	PhaseParse   = "parse"
	PhaseResolve = "resolve"
	PhaseLinks   = "links"
	PhaseProps   = "props"
	PhasePlan    = "plan"
)

// Options control a compilation.
type Options struct {
	Mode diag.Mode
	// Metrics is optional.
	Metrics *Metrics
}

// Result is a successful compilation: the plan and every warning the
// phases reported, in phase order.
type Result struct {
	Plan        *plan.Plan
	Diagnostics diag.List
}

// Compile turns a declaration tree into a construction plan. On failure
// the returned error is a diag.List and no plan is produced.
func Compile(ctx context.Context, tree *decl.Tree, opts Options) (*Result, error) {
	if tree != nil {
		ctx = ctxlog.With(ctx, "schema", tree.Name)
	}
	c := &run{ctx: ctx, opts: opts}
	res, err := c.compile(tree)
	c.record(res, err)
	return res, err
}

type run struct {
	ctx  context.Context
	opts Options
}

func (c *run) compile(tree *decl.Tree) (*Result, error) {
	logger := ctxlog.FromContext(c.ctx)
	logger.Debug("Compiling schema.", "mode", c.opts.Mode.String())

	var (
		s   *schema.PipelineSchema
		ids *resolve.Result
		lr  *links.Result
		pr  *props.Result
		err error
	)

	if err = c.phase(PhaseParse, func() error {
		s, err = schema.Parse(c.ctx, tree)
		return err
	}); err != nil {
		return nil, err
	}
	if err = c.phase(PhaseResolve, func() error {
		ids, err = resolve.Resolve(c.ctx, s, c.opts.Mode)
		return err
	}); err != nil {
		return nil, err
	}
	if err = c.phase(PhaseLinks, func() error {
		lr, err = links.Analyze(c.ctx, s.Links, ids, c.opts.Mode)
		return err
	}); err != nil {
		return nil, err
	}
	if err = c.phase(PhaseProps, func() error {
		pr, err = props.Assign(c.ctx, s.Properties, ids, c.opts.Mode)
		return err
	}); err != nil {
		return nil, err
	}

	res := &Result{}
	_ = c.phase(PhasePlan, func() error {
		res.Plan = plan.Build(c.ctx, s.Name, ids, lr.Ops, pr.Ops)
		return nil
	})

	res.Diagnostics = append(res.Diagnostics, ids.Diagnostics...)
	res.Diagnostics = append(res.Diagnostics, lr.Diagnostics...)
	res.Diagnostics = append(res.Diagnostics, pr.Diagnostics...)

	for _, d := range res.Diagnostics {
		logger.Warn("Compiler warning.", "code", string(d.Code), "subject", d.Subject, "message", d.Message, "pos", d.Pos.String())
	}
	logger.Debug("Schema compiled.", "instructions", len(res.Plan.Instructions), "warnings", len(res.Diagnostics))
	return res, nil
}

// phase runs fn and observes its duration.
func (c *run) phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if c.opts.Metrics != nil {
		c.opts.Metrics.Duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		ctxlog.FromContext(c.ctx).Debug("Compiler phase failed.", "phase", name, "error", err)
	}
	return err
}

func (c *run) record(res *Result, err error) {
	m := c.opts.Metrics
	if m == nil {
		return
	}

	if err != nil {
		m.Compilations.WithLabelValues("error").Inc()
		if list, ok := diag.AsList(err); ok {
			for _, d := range list {
				m.Diagnostics.WithLabelValues(string(d.Code), d.Severity.String()).Inc()
			}
		}
		return
	}

	m.Compilations.WithLabelValues("ok").Inc()
	for _, d := range res.Diagnostics {
		m.Diagnostics.WithLabelValues(string(d.Code), d.Severity.String()).Inc()
	}
	m.Instances.WithLabelValues(res.Plan.Schema).Set(float64(len(res.Plan.Stages)))
}
