package hclsource

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/pipegen/internal/decl"
	"github.com/zclconf/go-cty/cty"
)

// charFunc marks a character literal: char(",").
const charFunc = "char"

// literal classifies an attribute expression. Only constant expressions
// become typed literals: a bare identifier is an Ident, a char(...) call
// with a single string is a Char, and anything else that cannot be
// evaluated without variables, or evaluates to a collection, is
// Unsupported.
func (t *translator) literal(e hcl.Expression) decl.Literal {
	if call, ok := e.(*hclsyntax.FunctionCallExpr); ok && call.Name == charFunc && len(call.Args) == 1 {
		arg := t.literal(call.Args[0])
		if arg.Kind == decl.LitString {
			return decl.Literal{Kind: decl.LitChar, Text: arg.Text}
		}
		return decl.Unsupported(t.text(e.Range()))
	}

	// true, false and null are literal values that also answer AsTraversal,
	// so only real variable references count as identifiers.
	if st, ok := e.(*hclsyntax.ScopeTraversalExpr); ok && len(st.Traversal) == 1 {
		return decl.Ident(st.Traversal.RootName())
	}

	val, diags := e.Value(nil)
	if diags.HasErrors() || !val.IsKnown() || val.IsNull() {
		return decl.Unsupported(t.text(e.Range()))
	}

	switch val.Type() {
	case cty.String:
		return decl.String(val.AsString())
	case cty.Bool:
		return decl.Bool(val.True())
	case cty.Number:
		return t.number(e, val)
	default:
		return decl.Unsupported(t.text(e.Range()))
	}
}

// number keeps integers written without a fraction or exponent as Int
// literals; everything else is a Float.
func (t *translator) number(e hcl.Expression, val cty.Value) decl.Literal {
	bf := val.AsBigFloat()
	written := t.text(e.Range())
	if bf.IsInt() && !strings.ContainsAny(written, ".eE") {
		return decl.Int(bf.Text('f', 0))
	}
	return decl.Float(bf.Text('g', -1))
}
