package hclsource

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/schema"
)

type translator struct {
	src []byte
}

// item is either an attribute or a block of a body.
type item struct {
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

func (i item) start() int {
	if i.attr != nil {
		return i.attr.SrcRange.Start.Byte
	}
	return i.block.TypeRange.Start.Byte
}

// ordered merges the attributes and blocks of body in source order.
func ordered(body *hclsyntax.Body) []item {
	items := make([]item, 0, len(body.Attributes)+len(body.Blocks))
	for _, a := range body.Attributes {
		items = append(items, item{attr: a})
	}
	for _, b := range body.Blocks {
		items = append(items, item{block: b})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].start() < items[j].start() })
	return items
}

func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte })
	return attrs
}

func pos(r hcl.Range) decl.Pos {
	return decl.Pos{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func (t *translator) pipeline(b *hclsyntax.Block) (*decl.Tree, error) {
	if len(b.Labels) != 1 {
		return nil, fmt.Errorf("%s: pipeline block needs exactly one label, the schema name", pos(b.TypeRange))
	}
	tree := &decl.Tree{
		Name:  b.Labels[0],
		Shape: decl.ShapeVariants,
		Pos:   pos(b.TypeRange),
	}

	for _, it := range ordered(b.Body) {
		switch {
		case it.attr != nil:
			tree.Decorators = append(tree.Decorators, t.attributeDecorator(it.attr))
		case it.block.Type == blockStage:
			v, err := t.stage(it.block)
			if err != nil {
				return nil, err
			}
			tree.Variants = append(tree.Variants, v)
		case it.block.Type == blockLink:
			d, err := t.link(it.block)
			if err != nil {
				return nil, err
			}
			tree.Decorators = append(tree.Decorators, d)
		default:
			tree.Decorators = append(tree.Decorators, t.blockDecorator(it.block))
		}
	}
	return tree, nil
}

func (t *translator) stage(b *hclsyntax.Block) (decl.Variant, error) {
	if len(b.Labels) == 0 {
		return decl.Variant{}, fmt.Errorf("%s: stage block needs a label, the stage identifier", pos(b.TypeRange))
	}
	v := decl.Variant{
		Ident:   b.Labels[0],
		Payload: b.Labels[1:],
		Pos:     pos(b.LabelRanges[0]),
	}
	for _, it := range ordered(b.Body) {
		if it.attr != nil {
			v.Decorators = append(v.Decorators, t.attributeDecorator(it.attr))
			continue
		}
		v.Decorators = append(v.Decorators, t.blockDecorator(it.block))
	}
	return v, nil
}

// link reads `stages = [A, B, ...]`. Tokens are kept as written.
func (t *translator) link(b *hclsyntax.Block) (decl.Decorator, error) {
	d := decl.Decorator{Name: schema.DecoratorLink, Pos: pos(b.TypeRange)}

	attr, ok := b.Body.Attributes[attrStages]
	if !ok {
		return d, fmt.Errorf("%s: link block needs a %q attribute", pos(b.TypeRange), attrStages)
	}
	exprs, diags := hcl.ExprList(attr.Expr)
	if diags.HasErrors() {
		return d, fmt.Errorf("%s: %q must be a list of stage identifiers: %w", pos(attr.SrcRange), attrStages, diags)
	}
	for _, e := range exprs {
		d.Args = append(d.Args, decl.Arg{Value: t.token(e), Pos: pos(e.Range())})
	}
	return d, nil
}

// token reads one link entry: a bare identifier, or a quoted name.
func (t *translator) token(e hcl.Expression) decl.Literal {
	if trav, diags := hcl.AbsTraversalForExpr(e); !diags.HasErrors() && len(trav) == 1 {
		return decl.Ident(trav.RootName())
	}
	lit := t.literal(e)
	if lit.Kind == decl.LitString {
		return decl.Ident(lit.Text)
	}
	return decl.Ident(t.text(e.Range()))
}

// attributeDecorator turns `key = value` into a decorator with one
// positional argument.
func (t *translator) attributeDecorator(a *hclsyntax.Attribute) decl.Decorator {
	return decl.Positional(a.Name, pos(a.NameRange), t.literal(a.Expr))
}

// blockDecorator turns `name { k = v ... }` into a decorator with keyword
// arguments. Nested blocks are not part of any decorator and are ignored.
func (t *translator) blockDecorator(b *hclsyntax.Block) decl.Decorator {
	d := decl.Decorator{Name: b.Type, Pos: pos(b.TypeRange)}
	for _, a := range sortedAttributes(b.Body) {
		d.Args = append(d.Args, decl.Arg{Key: a.Name, Value: t.literal(a.Expr), Pos: pos(a.NameRange)})
	}
	return d
}

func (t *translator) text(r hcl.Range) string {
	if r.Start.Byte < 0 || r.End.Byte > len(t.src) || r.Start.Byte > r.End.Byte {
		return ""
	}
	return string(t.src[r.Start.Byte:r.End.Byte])
}
