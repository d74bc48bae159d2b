// Package pipelinetest provides an in-memory pipeline runtime that records
// every call made against it. Failures can be injected per operation and
// target so that error paths of builders can be exercised.
package pipelinetest

import (
	"errors"
	"fmt"

	"github.com/vk/pipegen/pkg/pipeline"
)

// Operation names used in events and failure injection.
const (
	OpMakeElement  = "make-element"
	OpNewContainer = "new-container"
	OpSetProperty  = "set-property"
	OpRegister     = "register"
	OpLink         = "link"
	OpSetState     = "set-state"
)

// ErrInjected is returned by calls that were configured to fail with Fail.
var ErrInjected = errors.New("injected failure")

// Event is one recorded runtime call.
type Event struct {
	Op     string
	Target string
	Detail string
}

func (e Event) String() string {
	if e.Detail == "" {
		return e.Op + " " + e.Target
	}
	return e.Op + " " + e.Target + " " + e.Detail
}

// Recorder is a pipeline.Factory that records calls. It is meant to be
// driven from a single goroutine.
type Recorder struct {
	events   []Event
	failures map[string]error
	// Factories, when non-nil, restricts the factory kinds MakeElement
	// accepts.
	Factories map[string]bool
}

var _ pipeline.Factory = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{failures: make(map[string]error)}
}

// Fail makes the next and every later call of op on target return err.
// Targets are element display names, container names, "src->dst" for
// links, and the state name for set-state. A nil err means ErrInjected.
func (r *Recorder) Fail(op, target string, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.failures[op+"|"+target] = err
}

// Events returns the recorded calls in order.
func (r *Recorder) Events() []Event {
	return append([]Event(nil), r.events...)
}

// Lines returns the recorded calls formatted one per line.
func (r *Recorder) Lines() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.String()
	}
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, e := range r.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Reset drops recorded events. Injected failures are kept.
func (r *Recorder) Reset() {
	r.events = nil
}

func (r *Recorder) call(op, target, detail string) error {
	if err, ok := r.failures[op+"|"+target]; ok {
		r.events = append(r.events, Event{Op: op, Target: target, Detail: "failed"})
		return err
	}
	r.events = append(r.events, Event{Op: op, Target: target, Detail: detail})
	return nil
}

// MakeElement implements pipeline.Factory.
func (r *Recorder) MakeElement(factory, name string) (pipeline.Element, error) {
	if r.Factories != nil && !r.Factories[factory] {
		r.events = append(r.events, Event{Op: OpMakeElement, Target: name, Detail: factory + " unknown"})
		return nil, fmt.Errorf("no element factory %q", factory)
	}
	if err := r.call(OpMakeElement, name, factory); err != nil {
		return nil, err
	}
	return &Element{rec: r, Factory: factory, name: name, Properties: make(map[string]any)}, nil
}

// NewContainer implements pipeline.Factory.
func (r *Recorder) NewContainer(name string) (pipeline.Container, error) {
	if err := r.call(OpNewContainer, name, ""); err != nil {
		return nil, err
	}
	return &Container{rec: r, name: name}, nil
}

// Element is a recorded element.
type Element struct {
	rec        *Recorder
	name       string
	Factory    string
	Properties map[string]any
	Links      []string
}

var _ pipeline.Element = (*Element)(nil)

// Name implements pipeline.Element.
func (e *Element) Name() string { return e.name }

// SetPropertyFromString implements pipeline.Element. The text is stored as is.
func (e *Element) SetPropertyFromString(key, value string) error {
	if err := e.rec.call(OpSetProperty, e.name+"."+key, fmt.Sprintf("%q", value)); err != nil {
		return err
	}
	e.Properties[key] = value
	return nil
}

// SetProperty implements pipeline.Element.
func (e *Element) SetProperty(key string, value any) error {
	if err := e.rec.call(OpSetProperty, e.name+"."+key, fmt.Sprintf("%T(%v)", value, value)); err != nil {
		return err
	}
	e.Properties[key] = value
	return nil
}

// Link implements pipeline.Element.
func (e *Element) Link(dst pipeline.Element) error {
	if err := e.rec.call(OpLink, e.name+"->"+dst.Name(), ""); err != nil {
		return err
	}
	e.Links = append(e.Links, dst.Name())
	return nil
}

// Container is a recorded container.
type Container struct {
	rec      *Recorder
	name     string
	Elements []string
	State    pipeline.State
	// Transitions counts successful state changes.
	Transitions int
}

var _ pipeline.Container = (*Container)(nil)

// Name implements pipeline.Container.
func (c *Container) Name() string { return c.name }

// Add implements pipeline.Container. An element can be added only once.
func (c *Container) Add(e pipeline.Element) error {
	for _, name := range c.Elements {
		if name == e.Name() {
			return fmt.Errorf("element %q already in container %q", name, c.name)
		}
	}
	if err := c.rec.call(OpRegister, e.Name(), "in "+c.name); err != nil {
		return err
	}
	c.Elements = append(c.Elements, e.Name())
	return nil
}

// SetState implements pipeline.Container.
func (c *Container) SetState(s pipeline.State) error {
	if err := c.rec.call(OpSetState, s.String(), "on "+c.name); err != nil {
		return err
	}
	c.State = s
	c.Transitions++
	return nil
}
