package diag

import (
	"fmt"
	"strings"

	"github.com/vk/pipegen/internal/decl"
)

// Mode decides how recoverable problems are reported. In permissive mode
// the offending item is dropped and a warning recorded; in strict mode the
// same finding is an error and compilation fails.
type Mode int

const (
	ModePermissive Mode = iota
	ModeStrict
)

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "permissive"
}

// ParseMode parses "strict" or "permissive". The empty string is permissive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "permissive":
		return ModePermissive, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModePermissive, fmt.Errorf("invalid mode %q: must be 'strict' or 'permissive'", s)
	}
}

// Dropped builds the diagnostic for an item the compiler is skipping.
func (m Mode) Dropped(code Code, pos decl.Pos, subject, format string, args ...any) Diagnostic {
	if m == ModeStrict {
		return Errorf(code, pos, subject, format, args...)
	}
	return Warningf(code, pos, subject, format, args...)
}
