// Package schema is the Schema Parser: it validates the shape of a
// declaration tree and extracts an immutable PipelineSchema from it.
package schema

import (
	"github.com/vk/pipegen/internal/decl"
)

// Decorator names understood by the compiler.
const (
	DecoratorName     = "name"
	DecoratorCount    = "count"
	DecoratorProperty = "property"
	DecoratorLink     = "link"
)

// Stage is one declared stage with its raw decorators.
type Stage struct {
	Raw        string
	Canonical  string
	Pos        decl.Pos
	Decorators []decl.Decorator
}

// LinkChain is the token list of one link directive, as written.
type LinkChain struct {
	Tokens []string
	Pos    decl.Pos
}

// PropertyAssignment is one `key = literal` entry of a property decorator.
type PropertyAssignment struct {
	// Stage is the canonical identifier of the owning stage.
	Stage string
	Key   string
	Value decl.Literal
	Pos   decl.Pos
}

// PipelineSchema is the parsed form of one declaration tree. It is built
// once by Parse and never modified afterwards.
type PipelineSchema struct {
	Name       string
	Pos        decl.Pos
	Stages     []Stage
	Links      []LinkChain
	Properties []PropertyAssignment
}

// Stage returns the stage with the given canonical identifier.
func (s *PipelineSchema) Stage(canonical string) (Stage, bool) {
	for _, st := range s.Stages {
		if st.Canonical == canonical {
			return st, true
		}
	}
	return Stage{}, false
}
