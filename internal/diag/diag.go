// Package diag holds compiler diagnostics. A Diagnostic is a coded,
// positioned message; a List of them is an error. Structural problems are
// always errors. Problems the compiler can recover from by dropping the
// offending item are reported at a severity chosen by Mode.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/pipegen/internal/decl"
)

// Code identifies a class of diagnostic.
type Code string

const (
	// CodeShape: the input is not a closed set of unit stage variants.
	CodeShape Code = "shape"
	// CodeDecoratorValueType: a decorator got a literal of the wrong kind.
	CodeDecoratorValueType Code = "decorator-value-type"
	// CodeDecoratorRange: a decorator literal has the right kind but an
	// unusable value.
	CodeDecoratorRange Code = "decorator-range"
	// CodeCount: a link directive names fewer than two stages.
	CodeCount Code = "count"
	// CodeDuplicateStage: two stages resolve to the same identifier.
	CodeDuplicateStage Code = "duplicate-stage"
	// CodeReservedIdentifier: a stage collides with a generated member.
	CodeReservedIdentifier Code = "reserved-identifier"
	// CodeDuplicateDecorator: a single-valued decorator appears twice.
	CodeDuplicateDecorator Code = "duplicate-decorator"
	// CodeUnresolvedLink: a link token names no active stage.
	CodeUnresolvedLink Code = "unresolved-link"
	// CodeInvalidPropertyKey: a property key is not a bare identifier.
	CodeInvalidPropertyKey Code = "invalid-property-key"
	// CodeUnparseableLiteral: a numeric, boolean or char literal does not parse.
	CodeUnparseableLiteral Code = "unparseable-literal"
	// CodeUnsupportedLiteral: a property value has no setter.
	CodeUnsupportedLiteral Code = "unsupported-literal"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic describes a single compiler finding.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	// Subject names what the diagnostic is about, e.g. "stage worker" or
	// "stage x, property uri".
	Subject string
	Pos     decl.Pos
}

// Error formats the diagnostic as "[code] message (subject) at pos".
func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	if d.Subject != "" {
		fmt.Fprintf(&b, " (%s)", d.Subject)
	}
	if d.Pos.IsValid() {
		fmt.Fprintf(&b, " at %s", d.Pos)
	}
	return b.String()
}

// Errorf builds an error-severity diagnostic.
func Errorf(code Code, pos decl.Pos, subject, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...), Subject: subject, Pos: pos}
}

// Warningf builds a warning-severity diagnostic.
func Warningf(code Code, pos decl.Pos, subject, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Subject: subject, Pos: pos}
}

// List is an ordered collection of diagnostics. It implements error so a
// compiler stage can return it directly.
type List []Diagnostic

// Error returns a compact summary: the first entry and how many follow.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// HasErrors reports whether any entry has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity entries.
func (l List) Errors() List {
	return l.filter(SeverityError)
}

// Warnings returns only the warning-severity entries.
func (l List) Warnings() List {
	return l.filter(SeverityWarning)
}

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Err returns the error entries as an error, or nil if there are none.
func (l List) Err() error {
	if errs := l.Errors(); len(errs) > 0 {
		return errs
	}
	return nil
}

// Single wraps one diagnostic as an error.
func Single(d Diagnostic) error {
	return List{d}
}

// AsList extracts a diagnostic list from err.
func AsList(err error) (List, bool) {
	if err == nil {
		return nil, false
	}
	var list List
	if errors.As(err, &list) {
		return list, true
	}
	var single Diagnostic
	if errors.As(err, &single) {
		return List{single}, true
	}
	return nil, false
}

// HasCode reports whether err carries a diagnostic with the given code.
func HasCode(err error, code Code) bool {
	list, ok := AsList(err)
	if !ok {
		return false
	}
	for _, d := range list {
		if d.Code == code {
			return true
		}
	}
	return false
}

// First returns the first diagnostic carried by err.
func First(err error) (Diagnostic, bool) {
	list, ok := AsList(err)
	if !ok || len(list) == 0 {
		return Diagnostic{}, false
	}
	return list[0], true
}
