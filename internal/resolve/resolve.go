// Package resolve is the Name Resolver. It turns parsed stages into the
// active instance set: canonical identifiers, display names, factory keys
// and multiplicity expansion.
package resolve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/ident"
	"github.com/vk/pipegen/internal/schema"
)

// maxCount bounds the count decorator.
const maxCount = 1<<16 - 1

// Instance is one element to be created at runtime.
type Instance struct {
	// ID is the canonical identifier, suffixed with the index for expanded stages.
	ID string
	// Stage is the canonical identifier of the declaring stage.
	Stage string
	// Index is the expansion index, or -1 for a stage without count.
	Index       int
	FactoryKey  string
	DisplayName string
	// Field is the exported Go field name used by generated handles.
	Field string
}

// Result is the active identifier set in declaration order.
type Result struct {
	Instances   []Instance
	Diagnostics diag.List

	byID    map[string]int
	byStage map[string][]int
}

// Has reports whether id is in the active set.
func (r *Result) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Lookup returns the instance with the given identifier.
func (r *Result) Lookup(id string) (Instance, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Instance{}, false
	}
	return r.Instances[i], true
}

// IDs returns every active identifier in order.
func (r *Result) IDs() []string {
	out := make([]string, len(r.Instances))
	for i, inst := range r.Instances {
		out[i] = inst.ID
	}
	return out
}

// InstancesOf returns the identifiers a declared stage expanded into.
func (r *Result) InstancesOf(stage string) []string {
	idx := r.byStage[stage]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = r.Instances[j].ID
	}
	return out
}

// options collected from a stage's decorators.
type options struct {
	name     string
	hasName  bool
	count    int
	hasCount bool
}

// Resolve computes the active instance set. The first error stops
// resolution: decorator type errors always, duplicate decorators in strict
// mode. In permissive mode the first decorator of a kind wins and repeats
// become warnings.
func Resolve(ctx context.Context, s *schema.PipelineSchema, mode diag.Mode) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving stage identifiers.", "stages", len(s.Stages))

	r := &Result{
		byID:    make(map[string]int),
		byStage: make(map[string][]int),
	}
	fields := make(map[string]string)

	for _, st := range s.Stages {
		opts, dups, err := scanDecorators(st, mode)
		if err != nil {
			return nil, err
		}
		r.Diagnostics = append(r.Diagnostics, dups...)

		for _, inst := range expand(st, opts) {
			if prev, dup := r.byID[inst.ID]; dup {
				return nil, diag.Single(diag.Errorf(diag.CodeDuplicateStage, st.Pos, "stage "+st.Raw,
					"identifier %q is already used by stage %q", inst.ID, r.Instances[prev].Stage))
			}
			if ident.Reserved(inst.Field) {
				return nil, diag.Single(diag.Errorf(diag.CodeReservedIdentifier, st.Pos, "stage "+st.Raw,
					"field %q collides with a generated handle method", inst.Field))
			}
			if prev, dup := fields[inst.Field]; dup {
				return nil, diag.Single(diag.Errorf(diag.CodeDuplicateStage, st.Pos, "stage "+st.Raw,
					"identifier %q maps to field %q, already used by %q", inst.ID, inst.Field, prev))
			}
			fields[inst.Field] = inst.ID
			r.byID[inst.ID] = len(r.Instances)
			r.byStage[st.Canonical] = append(r.byStage[st.Canonical], len(r.Instances))
			r.Instances = append(r.Instances, inst)
		}
		logger.Debug("Stage resolved.", "stage", st.Canonical, "instances", len(r.byStage[st.Canonical]))
	}

	logger.Debug("Identifiers resolved.", "instances", len(r.Instances), "warnings", len(r.Diagnostics))
	return r, nil
}

// scanDecorators reads the name and count decorators of a stage.
func scanDecorators(st schema.Stage, mode diag.Mode) (options, diag.List, error) {
	var (
		opts options
		dups diag.List
	)
	subject := "stage " + st.Raw

	for _, d := range st.Decorators {
		switch d.Name {
		case schema.DecoratorName:
			if opts.hasName {
				dup := duplicate(d, subject, mode)
				if dup.Severity == diag.SeverityError {
					return opts, nil, diag.Single(dup)
				}
				dups = append(dups, dup)
				continue
			}
			lit, err := singleLiteral(d, subject)
			if err != nil {
				return opts, nil, err
			}
			if lit.Kind != decl.LitString {
				return opts, nil, diag.Single(diag.Errorf(diag.CodeDecoratorValueType, d.Pos, subject,
					"name can only be assigned a string literal, got %s %s", lit.Kind, lit.GoString()))
			}
			opts.name, opts.hasName = lit.Text, true

		case schema.DecoratorCount:
			if opts.hasCount {
				dup := duplicate(d, subject, mode)
				if dup.Severity == diag.SeverityError {
					return opts, nil, diag.Single(dup)
				}
				dups = append(dups, dup)
				continue
			}
			lit, err := singleLiteral(d, subject)
			if err != nil {
				return opts, nil, err
			}
			if lit.Kind != decl.LitInt {
				return opts, nil, diag.Single(diag.Errorf(diag.CodeDecoratorValueType, d.Pos, subject,
					"count can only be assigned an integer literal, got %s %s", lit.Kind, lit.GoString()))
			}
			n, err := strconv.ParseUint(lit.Text, 10, 16)
			if err != nil || n == 0 {
				return opts, nil, diag.Single(diag.Errorf(diag.CodeDecoratorRange, d.Pos, subject,
					"count must be between 1 and %d, got %s", maxCount, lit.Text))
			}
			opts.count, opts.hasCount = int(n), true
		}
	}
	return opts, dups, nil
}

// duplicate reports a repeated decorator. The first occurrence applies.
func duplicate(d decl.Decorator, subject string, mode diag.Mode) diag.Diagnostic {
	return mode.Dropped(diag.CodeDuplicateDecorator, d.Pos, subject,
		"repeated %q decorator ignored, the first one applies", d.Name)
}

// singleLiteral returns the only positional argument of a decorator.
func singleLiteral(d decl.Decorator, subject string) (decl.Literal, error) {
	if len(d.Args) != 1 || d.Args[0].Key != "" {
		return decl.Literal{}, diag.Single(diag.Errorf(diag.CodeDecoratorValueType, d.Pos, subject,
			"%s expects exactly one literal value, got %d argument(s)", d.Name, len(d.Args)))
	}
	return d.Args[0].Value, nil
}

// expand produces the instances of one stage. Without count the stage is a
// single instance named after the stage; with count N the unsuffixed name is
// not part of the active set.
func expand(st schema.Stage, opts options) []Instance {
	factoryKey := ident.FactoryKey(st.Raw)
	if !opts.hasCount {
		display := st.Canonical
		if opts.hasName {
			display = opts.name
		}
		return []Instance{{
			ID:          st.Canonical,
			Stage:       st.Canonical,
			Index:       -1,
			FactoryKey:  factoryKey,
			DisplayName: display,
			Field:       ident.Field(st.Canonical),
		}}
	}

	out := make([]Instance, 0, opts.count)
	for i := 0; i < opts.count; i++ {
		id := ident.Instance(st.Canonical, i)
		display := id
		if opts.hasName {
			display = fmt.Sprintf("%s_%d", opts.name, i)
		}
		out = append(out, Instance{
			ID:          id,
			Stage:       st.Canonical,
			Index:       i,
			FactoryKey:  factoryKey,
			DisplayName: display,
			Field:       ident.Field(id),
		})
	}
	return out
}
