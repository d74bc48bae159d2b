// Package props is the Property Assigner. It classifies property literals
// and turns them into typed set operations.
package props

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/ident"
	"github.com/vk/pipegen/internal/schema"
)

// InstanceSet maps a declared stage to its active instances.
type InstanceSet interface {
	InstancesOf(stage string) []string
}

// Op sets one property on one instance.
type Op struct {
	Instance string
	Key      string
	Value    Value
	Setter   Setter
	Pos      decl.Pos
}

func (o Op) String() string {
	return fmt.Sprintf("(%s, %q, %s)", o.Instance, o.Key, o.Value)
}

// Result holds the set operations and any dropped-assignment diagnostics.
type Result struct {
	Ops         []Op
	Diagnostics diag.List
}

// Assign dispatches every assignment in declaration order and applies it to
// each instance of its stage, in index order. Assignments with a key that is
// not a bare identifier, or a literal that does not parse or has no setter,
// are dropped and reported according to mode.
func Assign(ctx context.Context, assignments []schema.PropertyAssignment, set InstanceSet, mode diag.Mode) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Assigning properties.", "assignments", len(assignments))

	r := &Result{}
	for _, a := range assignments {
		subject := fmt.Sprintf("stage %s, property %s", a.Stage, a.Key)

		if !ident.Valid(a.Key) {
			r.Diagnostics = append(r.Diagnostics, mode.Dropped(diag.CodeInvalidPropertyKey, a.Pos, subject,
				"property key %q is not a bare identifier", a.Key))
			continue
		}

		value, setter, d, ok := dispatch(a, subject, mode)
		if !ok {
			r.Diagnostics = append(r.Diagnostics, d)
			logger.Debug("Dropping property assignment.", "stage", a.Stage, "key", a.Key, "kind", a.Value.Kind.String())
			continue
		}

		for _, inst := range set.InstancesOf(a.Stage) {
			r.Ops = append(r.Ops, Op{Instance: inst, Key: a.Key, Value: value, Setter: setter, Pos: a.Pos})
		}
	}

	if err := r.Diagnostics.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Properties assigned.", "ops", len(r.Ops), "dropped", len(r.Diagnostics))
	return r, nil
}

// dispatch classifies a literal. The literal kind alone selects the setter.
func dispatch(a schema.PropertyAssignment, subject string, mode diag.Mode) (Value, Setter, diag.Diagnostic, bool) {
	lit := a.Value
	unparseable := func() diag.Diagnostic {
		return mode.Dropped(diag.CodeUnparseableLiteral, a.Pos, subject,
			"cannot parse %s literal %s", lit.Kind, lit.GoString())
	}

	switch lit.Kind {
	case decl.LitString:
		return Value{Kind: decl.LitString, Str: lit.Text}, SetterFromString, diag.Diagnostic{}, true

	case decl.LitChar:
		if utf8.RuneCountInString(lit.Text) != 1 {
			return Value{}, 0, unparseable(), false
		}
		r, _ := utf8.DecodeRuneInString(lit.Text)
		return Value{Kind: decl.LitChar, Char: r}, SetterValue, diag.Diagnostic{}, true

	case decl.LitInt:
		n, err := strconv.ParseInt(lit.Text, 10, 64)
		if err != nil {
			return Value{}, 0, unparseable(), false
		}
		return Value{Kind: decl.LitInt, Int: n}, SetterValue, diag.Diagnostic{}, true

	case decl.LitFloat:
		f, err := strconv.ParseFloat(lit.Text, 64)
		if err != nil {
			return Value{}, 0, unparseable(), false
		}
		return Value{Kind: decl.LitFloat, Float: f}, SetterValue, diag.Diagnostic{}, true

	case decl.LitBool:
		b, err := strconv.ParseBool(lit.Text)
		if err != nil {
			return Value{}, 0, unparseable(), false
		}
		return Value{Kind: decl.LitBool, Bool: b}, SetterValue, diag.Diagnostic{}, true

	default:
		return Value{}, 0, mode.Dropped(diag.CodeUnsupportedLiteral, a.Pos, subject,
			"%s value %s has no property setter", lit.Kind, lit.GoString()), false
	}
}
