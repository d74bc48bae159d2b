package decl

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// LitKind tags a literal. The zero value is LitUnsupported so that a literal
// a front-end could not classify is never dispatched by accident.
type LitKind int

const (
	LitUnsupported LitKind = iota
	LitString
	LitChar
	LitInt
	LitFloat
	LitBool
	// LitIdent is a bare identifier token, as written in link directives.
	LitIdent
)

// String returns the lower-case name of the kind.
func (k LitKind) String() string {
	switch k {
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitBool:
		return "bool"
	case LitIdent:
		return "ident"
	default:
		return "unsupported"
	}
}

// Literal is a tagged literal value. Text holds the value as written:
// the decoded string for String and Char, the digits for Int and Float,
// "true"/"false" for Bool. Numeric text is parsed only when dispatched.
type Literal struct {
	Kind LitKind
	Text string
}

// String builds a string literal.
func String(s string) Literal { return Literal{Kind: LitString, Text: s} }

// Char builds a character literal.
func Char(r rune) Literal { return Literal{Kind: LitChar, Text: string(r)} }

// Int builds an integer literal from its source digits.
func Int(text string) Literal { return Literal{Kind: LitInt, Text: text} }

// Float builds a floating point literal from its source text.
func Float(text string) Literal { return Literal{Kind: LitFloat, Text: text} }

// Bool builds a boolean literal.
func Bool(b bool) Literal { return Literal{Kind: LitBool, Text: strconv.FormatBool(b)} }

// Ident builds a bare identifier token.
func Ident(name string) Literal { return Literal{Kind: LitIdent, Text: name} }

// Unsupported wraps source text the front-end could not classify.
func Unsupported(text string) Literal { return Literal{Kind: LitUnsupported, Text: text} }

// Number classifies numeric source text: no fraction or exponent means Int.
func Number(text string) Literal {
	if strings.ContainsAny(text, ".eE") {
		return Float(text)
	}
	return Int(text)
}

// GoString renders the literal for diagnostics.
func (l Literal) GoString() string {
	switch l.Kind {
	case LitString:
		return strconv.Quote(l.Text)
	case LitChar:
		r, _ := utf8.DecodeRuneInString(l.Text)
		return strconv.QuoteRune(r)
	default:
		return l.Text
	}
}
