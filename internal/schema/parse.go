package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/ident"
)

// Parse validates the tree and extracts its stages, link directives and
// property assignments. Any shape problem is returned as a diag.List and no
// schema is produced.
func Parse(ctx context.Context, tree *decl.Tree) (*PipelineSchema, error) {
	logger := ctxlog.FromContext(ctx)

	if tree == nil {
		return nil, diag.Single(diag.Errorf(diag.CodeShape, decl.Pos{}, "", "no declaration to compile"))
	}
	logger.Debug("Parsing declaration tree.", "shape", tree.Shape.String(), "variants", len(tree.Variants))

	if tree.Shape != decl.ShapeVariants {
		return nil, diag.Single(diag.Errorf(diag.CodeShape, tree.Pos, schemaSubject(tree.Name),
			"pipeline schema must be a closed set of stage variants, got a %s", tree.Shape))
	}
	if strings.TrimSpace(tree.Name) == "" {
		return nil, diag.Single(diag.Errorf(diag.CodeShape, tree.Pos, "", "pipeline schema has no name"))
	}

	s := &PipelineSchema{
		Name:   tree.Name,
		Pos:    tree.Pos,
		Stages: make([]Stage, 0, len(tree.Variants)),
	}

	seen := make(map[string]string, len(tree.Variants))
	for _, v := range tree.Variants {
		if !ident.Valid(v.Ident) {
			return nil, diag.Single(diag.Errorf(diag.CodeShape, v.Pos, schemaSubject(tree.Name),
				"stage identifier %q is not a bare identifier", v.Ident))
		}
		if len(v.Payload) > 0 {
			return nil, diag.Single(diag.Errorf(diag.CodeShape, v.Pos, stageSubject(v.Ident),
				"stage variants cannot carry data, found payload (%s)", strings.Join(v.Payload, ", ")))
		}
		canonical := ident.Canonical(v.Ident)
		if prev, dup := seen[canonical]; dup {
			return nil, diag.Single(diag.Errorf(diag.CodeDuplicateStage, v.Pos, stageSubject(v.Ident),
				"stage %q resolves to %q, already used by %q", v.Ident, canonical, prev))
		}
		seen[canonical] = v.Ident

		s.Stages = append(s.Stages, Stage{
			Raw:        v.Ident,
			Canonical:  canonical,
			Pos:        v.Pos,
			Decorators: v.Decorators,
		})
		s.Properties = append(s.Properties, extractProperties(canonical, v.Decorators)...)
	}

	for _, d := range tree.Decorators {
		if d.Name != DecoratorLink {
			logger.Debug("Ignoring schema decorator.", "decorator", d.Name)
			continue
		}
		s.Links = append(s.Links, extractLink(d))
	}

	logger.Debug("Declaration tree parsed.", "stages", len(s.Stages), "links", len(s.Links), "properties", len(s.Properties))
	return s, nil
}

// extractProperties flattens every property decorator of a stage into
// assignments, keeping decorator order and argument order.
func extractProperties(stage string, decorators []decl.Decorator) []PropertyAssignment {
	var out []PropertyAssignment
	for _, d := range decl.Named(decorators, DecoratorProperty) {
		for _, arg := range d.Args {
			pos := arg.Pos
			if !pos.IsValid() {
				pos = d.Pos
			}
			out = append(out, PropertyAssignment{
				Stage: stage,
				Key:   arg.Key,
				Value: arg.Value,
				Pos:   pos,
			})
		}
	}
	return out
}

// extractLink keeps every token as written. Resolution happens in the link
// analyzer, which also enforces the minimum length.
func extractLink(d decl.Decorator) LinkChain {
	chain := LinkChain{Pos: d.Pos, Tokens: make([]string, 0, len(d.Args))}
	for _, arg := range d.Args {
		chain.Tokens = append(chain.Tokens, arg.Value.Text)
	}
	return chain
}

func schemaSubject(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("schema %s", name)
}

func stageSubject(raw string) string {
	return fmt.Sprintf("stage %s", raw)
}
