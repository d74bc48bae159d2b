package pipeline

import (
	"fmt"
)

// State is the run state of a container.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Active:
		return "Active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Element is one processing stage instance.
type Element interface {
	// Name is the display name the element was created with.
	Name() string
	// SetPropertyFromString assigns a property from its textual form. The
	// element coerces the text to the property's own type.
	SetPropertyFromString(key, value string) error
	// SetProperty assigns a typed property value.
	SetProperty(key string, value any) error
	// Link wires this element's output into dst's input.
	Link(dst Element) error
}

// Container owns a set of elements and drives their run state.
type Container interface {
	Name() string
	Add(e Element) error
	SetState(s State) error
}

// Factory creates elements and containers.
type Factory interface {
	// MakeElement creates an element of the given factory kind with the
	// given display name.
	MakeElement(factory, name string) (Element, error)
	NewContainer(name string) (Container, error)
}

// Error reports a failed runtime call.
type Error struct {
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
