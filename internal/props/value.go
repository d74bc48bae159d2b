package props

import (
	"fmt"
	"strconv"

	"github.com/vk/pipegen/internal/decl"
)

// Setter is the runtime call a property op dispatches to.
type Setter int

const (
	// SetterFromString hands the textual value to the element, which
	// coerces it to the property's own type.
	SetterFromString Setter = iota
	// SetterValue sets a typed value directly.
	SetterValue
)

func (s Setter) String() string {
	if s == SetterFromString {
		return "from-string"
	}
	return "value"
}

// MarshalYAML encodes the setter by name.
func (s Setter) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Value is a parsed property literal. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	Kind  decl.LitKind
	Str   string
	Char  rune
	Int   int64
	Float float64
	Bool  bool
}

// Any returns the payload as a Go value.
func (v Value) Any() any {
	switch v.Kind {
	case decl.LitString:
		return v.Str
	case decl.LitChar:
		return v.Char
	case decl.LitInt:
		return v.Int
	case decl.LitFloat:
		return v.Float
	case decl.LitBool:
		return v.Bool
	default:
		return nil
	}
}

// GoLiteral renders the value as Go source.
func (v Value) GoLiteral() string {
	switch v.Kind {
	case decl.LitString:
		return strconv.Quote(v.Str)
	case decl.LitChar:
		return strconv.QuoteRune(v.Char)
	case decl.LitInt:
		return fmt.Sprintf("int64(%d)", v.Int)
	case decl.LitFloat:
		return fmt.Sprintf("float64(%s)", strconv.FormatFloat(v.Float, 'g', -1, 64))
	case decl.LitBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "nil"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case decl.LitString:
		return fmt.Sprintf("String(%q)", v.Str)
	case decl.LitChar:
		return fmt.Sprintf("Char(%q)", v.Char)
	case decl.LitInt:
		return fmt.Sprintf("Int64(%d)", v.Int)
	case decl.LitFloat:
		return fmt.Sprintf("Float64(%s)", strconv.FormatFloat(v.Float, 'g', -1, 64))
	case decl.LitBool:
		return fmt.Sprintf("Bool(%t)", v.Bool)
	default:
		return "Unsupported"
	}
}

// yamlValue is the canonical encoding used for plan output and fingerprints.
type yamlValue struct {
	Kind  string `yaml:"kind"`
	Value any    `yaml:"value"`
}

// MarshalYAML encodes the value as {kind, value}. Chars are encoded as
// one-character strings.
func (v Value) MarshalYAML() (any, error) {
	payload := v.Any()
	if v.Kind == decl.LitChar {
		payload = string(v.Char)
	}
	return yamlValue{Kind: v.Kind.String(), Value: payload}, nil
}
