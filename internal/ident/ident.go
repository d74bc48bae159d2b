package ident

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/iancoleman/strcase"
)

// reserved are member names of the generated handle type that a stage field
// must not shadow.
var reserved = map[string]struct{}{
	"Start": {},
	"Stop":  {},
	"Close": {},
}

// Canonical converts a declared identifier into its lower snake case form.
// Digits stay attached to the word they follow: H264Parse is h264_parse.
func Canonical(raw string) string {
	return strings.ToLower(strings.Join(Words(raw), "_"))
}

type wordMode int

const (
	modeBoundary wordMode = iota
	modeLower
	modeUpper
)

// Words splits an identifier into words. Non-alphanumeric runes separate
// words. Inside a run, a word ends before an upper case rune that follows
// a lower case one, and before the last upper case rune of an acronym when
// a lower case rune follows it (URIDecode is URI, Decode). Digits never
// start a word.
func Words(s string) []string {
	var out []string
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, part := range parts {
		rs := []rune(part)
		start, mode := 0, modeBoundary
		for i, c := range rs {
			if i == len(rs)-1 {
				out = append(out, string(rs[start:]))
				break
			}
			next := rs[i+1]
			nextMode := mode
			if unicode.IsLower(c) {
				nextMode = modeLower
			} else if unicode.IsUpper(c) {
				nextMode = modeUpper
			}

			switch {
			case nextMode == modeLower && unicode.IsUpper(next):
				out = append(out, string(rs[start:i+1]))
				start, mode = i+1, modeBoundary
			case mode == modeUpper && unicode.IsUpper(c) && unicode.IsLower(next):
				out = append(out, string(rs[start:i]))
				start, mode = i, modeBoundary
			default:
				mode = nextMode
			}
		}
	}
	return out
}

// FactoryKey is the element factory name for a declared identifier.
func FactoryKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Instance returns the identifier of the index-th expanded instance.
func Instance(canonical string, index int) string {
	return fmt.Sprintf("%s_%d", canonical, index)
}

// Field returns the exported Go field name for a canonical identifier.
func Field(canonical string) string {
	return strcase.ToCamel(canonical)
}

// TypeName returns the exported Go type name for a schema name. Going
// through snake case first keeps leading acronyms intact.
func TypeName(schema string) string {
	return strcase.ToCamel(Canonical(schema))
}

// Valid reports whether s is a bare identifier.
func Valid(s string) bool {
	return s != "" && hclsyntax.ValidIdentifier(s)
}

// Reserved reports whether a generated field name collides with a handle method.
func Reserved(field string) bool {
	_, ok := reserved[field]
	return ok
}
