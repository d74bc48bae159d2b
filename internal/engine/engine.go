package engine

import (
	"context"
	"fmt"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/plan"
	"github.com/vk/pipegen/internal/props"
	"github.com/vk/pipegen/pkg/pipeline"
)

// InstructionError reports the plan instruction that failed.
type InstructionError struct {
	Schema      string
	Index       int
	Instruction plan.Instruction
	Err         error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("pipeline %s: instruction %d (%s): %v", e.Schema, e.Index, e.Instruction, e.Err)
}

func (e *InstructionError) Unwrap() error { return e.Err }

// Execute runs every instruction of p in order and returns the handle that
// owns the built elements and container. Nothing is started.
func Execute(ctx context.Context, p *plan.Plan, f pipeline.Factory) (*pipeline.Handle, error) {
	logger := ctxlog.FromContext(ctx).With("schema", p.Schema)
	logger.Debug("Executing construction plan.", "instructions", len(p.Instructions))

	x := &executor{
		plan:     p,
		factory:  f,
		elements: make(map[string]pipeline.Element, len(p.Stages)),
	}

	for i, in := range p.Instructions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", p.Schema, err)
		}
		if err := x.step(in); err != nil {
			logger.Debug("Instruction failed.", "index", i, "op", string(in.Op), "error", err)
			return nil, &InstructionError{Schema: p.Schema, Index: i, Instruction: in, Err: err}
		}
	}

	if x.handle == nil {
		return nil, fmt.Errorf("pipeline %s: plan has no %s instruction", p.Schema, plan.OpCreateContainer)
	}
	logger.Debug("Construction plan executed.", "elements", len(x.order))
	return x.handle, nil
}

type executor struct {
	plan     *plan.Plan
	factory  pipeline.Factory
	elements map[string]pipeline.Element
	order    []string
	handle   *pipeline.Handle
}

func (x *executor) step(in plan.Instruction) error {
	switch in.Op {
	case plan.OpCreate:
		e, err := x.factory.MakeElement(in.Factory, in.Name)
		if err != nil {
			return err
		}
		x.elements[in.Instance] = e
		x.order = append(x.order, in.Instance)
		return nil

	case plan.OpSetProperty:
		e, err := x.element(in.Instance)
		if err != nil {
			return err
		}
		prop := in.Property
		if prop.Setter == props.SetterFromString {
			return e.SetPropertyFromString(prop.Key, prop.Value.Str)
		}
		return e.SetProperty(prop.Key, prop.Value.Any())

	case plan.OpCreateContainer:
		c, err := x.factory.NewContainer(in.Name)
		if err != nil {
			return err
		}
		x.handle = pipeline.NewHandle(x.plan.Schema, c)
		for _, id := range x.order {
			x.handle.Put(id, x.elements[id])
		}
		return nil

	case plan.OpRegister:
		if x.handle == nil {
			return fmt.Errorf("register before %s", plan.OpCreateContainer)
		}
		e, err := x.element(in.Instance)
		if err != nil {
			return err
		}
		return x.handle.Container().Add(e)

	case plan.OpLink:
		src, err := x.element(in.From)
		if err != nil {
			return err
		}
		dst, err := x.element(in.To)
		if err != nil {
			return err
		}
		return src.Link(dst)

	default:
		return fmt.Errorf("unknown op %q", in.Op)
	}
}

func (x *executor) element(id string) (pipeline.Element, error) {
	e, ok := x.elements[id]
	if !ok {
		return nil, fmt.Errorf("element %q was not created", id)
	}
	return e, nil
}
