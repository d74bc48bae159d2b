package decl

import "fmt"

// Shape describes the structural form of a declaration.
type Shape int

const (
	// ShapeVariants is a closed set of tagged unit variants. It is the only
	// shape the compiler accepts.
	ShapeVariants Shape = iota
	// ShapeRecord is a named collection of fields.
	ShapeRecord
	// ShapeUnknown is any other top-level form a front-end encountered.
	ShapeUnknown
)

// String returns the human-readable name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeVariants:
		return "variants"
	case ShapeRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Pos is a source position. The zero value means "unknown".
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line number.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// String formats the position as file:line:column.
func (p Pos) String() string {
	if !p.IsValid() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Tree is one schema declaration.
type Tree struct {
	Name       string
	Shape      Shape
	Pos        Pos
	Variants   []Variant
	Decorators []Decorator
}

// Variant is a single tagged alternative of a ShapeVariants tree.
type Variant struct {
	Ident string
	// Payload lists any data the variant carries. Stage variants are unit
	// variants, so a non-empty payload is a shape violation.
	Payload    []string
	Pos        Pos
	Decorators []Decorator
}

// Decorator is a named annotation with an ordered argument list.
type Decorator struct {
	Name string
	Pos  Pos
	Args []Arg
}

// Arg is a decorator argument. Positional arguments have an empty Key.
type Arg struct {
	Key   string
	Value Literal
	Pos   Pos
}

// Named returns the decorators called name, in declaration order.
func Named(decorators []Decorator, name string) []Decorator {
	var out []Decorator
	for _, d := range decorators {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Positional returns a decorator with a single positional argument.
func Positional(name string, pos Pos, value Literal) Decorator {
	return Decorator{Name: name, Pos: pos, Args: []Arg{{Value: value, Pos: pos}}}
}
