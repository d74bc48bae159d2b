// Package plan is the Construction Plan Builder. It merges resolved
// instances, link operations and property operations into a fixed-phase,
// deterministic instruction list plus a description of the generated handle.
package plan

import (
	"context"
	"fmt"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/ident"
	"github.com/vk/pipegen/internal/links"
	"github.com/vk/pipegen/internal/props"
	"github.com/vk/pipegen/internal/resolve"
)

// OpKind is the kind of a plan instruction.
type OpKind string

const (
	OpCreate          OpKind = "create"
	OpSetProperty     OpKind = "set-property"
	OpCreateContainer OpKind = "create-container"
	OpRegister        OpKind = "register"
	OpLink            OpKind = "link"
)

// Property is the payload of a set-property instruction.
type Property struct {
	Key    string       `yaml:"key"`
	Value  props.Value  `yaml:"value"`
	Setter props.Setter `yaml:"setter"`
}

// Instruction is one step of a construction plan. Which fields are set
// depends on Op:
//
//	create            Instance, Factory, Name (display name)
//	set-property      Instance, Property
//	create-container  Name
//	register          Instance
//	link              From, To
type Instruction struct {
	Op       OpKind    `yaml:"op"`
	Instance string    `yaml:"instance,omitempty"`
	Factory  string    `yaml:"factory,omitempty"`
	Name     string    `yaml:"name,omitempty"`
	Property *Property `yaml:"property,omitempty"`
	From     string    `yaml:"from,omitempty"`
	To       string    `yaml:"to,omitempty"`
	Pos      decl.Pos  `yaml:"-"`
}

func (i Instruction) String() string {
	switch i.Op {
	case OpCreate:
		return fmt.Sprintf("create %s = %s(%q)", i.Instance, i.Factory, i.Name)
	case OpSetProperty:
		return fmt.Sprintf("set %s.%s = %s (%s)", i.Instance, i.Property.Key, i.Property.Value, i.Property.Setter)
	case OpCreateContainer:
		return fmt.Sprintf("create-container %q", i.Name)
	case OpRegister:
		return fmt.Sprintf("register %s", i.Instance)
	case OpLink:
		return fmt.Sprintf("link %s -> %s", i.From, i.To)
	default:
		return string(i.Op)
	}
}

// Stage describes one element of the built pipeline.
type Stage struct {
	ID          string `yaml:"id"`
	Stage       string `yaml:"stage"`
	Index       int    `yaml:"index"`
	Factory     string `yaml:"factory"`
	DisplayName string `yaml:"display_name"`
	Field       string `yaml:"field"`
}

// State is a runtime state a lifecycle operation transitions to.
type State string

const (
	StateIdle   State = "Idle"
	StateActive State = "Active"
)

// Field is one exported element field of the generated handle.
type Field struct {
	Name     string `yaml:"name"`
	Instance string `yaml:"instance"`
}

// Lifecycle is one generated state transition method.
type Lifecycle struct {
	Op     string `yaml:"op"`
	Method string `yaml:"method"`
	Target State  `yaml:"target"`
}

// Handle describes the type that owns a built pipeline.
type Handle struct {
	TypeName       string      `yaml:"type_name"`
	Constructor    string      `yaml:"constructor"`
	Fields         []Field     `yaml:"fields"`
	ContainerField string      `yaml:"container_field"`
	Lifecycle      []Lifecycle `yaml:"lifecycle"`
	// Teardown is the method that runs Stop at most once.
	Teardown string `yaml:"teardown"`
}

// Plan is a complete construction plan. It is a pure function of the
// schema it was built from.
type Plan struct {
	Schema       string        `yaml:"schema"`
	Container    string        `yaml:"container"`
	Stages       []Stage       `yaml:"stages"`
	Instructions []Instruction `yaml:"instructions"`
	Handle       Handle        `yaml:"handle"`
}

// Build assembles the plan in fixed phase order: for every instance its
// create instruction followed by its property instructions, then the
// container, then one register per instance, then every link.
func Build(ctx context.Context, name string, res *resolve.Result, linkOps []links.Op, propOps []props.Op) *Plan {
	logger := ctxlog.FromContext(ctx)

	byInstance := make(map[string][]props.Op, len(res.Instances))
	for _, op := range propOps {
		byInstance[op.Instance] = append(byInstance[op.Instance], op)
	}

	p := &Plan{
		Schema:       name,
		Container:    name,
		Stages:       make([]Stage, 0, len(res.Instances)),
		Instructions: make([]Instruction, 0, 2*len(res.Instances)+len(propOps)+len(linkOps)+1),
	}

	for _, inst := range res.Instances {
		p.Stages = append(p.Stages, Stage{
			ID:          inst.ID,
			Stage:       inst.Stage,
			Index:       inst.Index,
			Factory:     inst.FactoryKey,
			DisplayName: inst.DisplayName,
			Field:       inst.Field,
		})
		p.Instructions = append(p.Instructions, Instruction{
			Op:       OpCreate,
			Instance: inst.ID,
			Factory:  inst.FactoryKey,
			Name:     inst.DisplayName,
		})
		for _, op := range byInstance[inst.ID] {
			p.Instructions = append(p.Instructions, Instruction{
				Op:       OpSetProperty,
				Instance: op.Instance,
				Property: &Property{Key: op.Key, Value: op.Value, Setter: op.Setter},
				Pos:      op.Pos,
			})
		}
	}

	p.Instructions = append(p.Instructions, Instruction{Op: OpCreateContainer, Name: name})

	for _, inst := range res.Instances {
		p.Instructions = append(p.Instructions, Instruction{Op: OpRegister, Instance: inst.ID})
	}

	for _, op := range linkOps {
		p.Instructions = append(p.Instructions, Instruction{Op: OpLink, From: op.From, To: op.To, Pos: op.Pos})
	}

	p.Handle = describeHandle(name, res.Instances)

	logger.Debug("Construction plan built.",
		"stages", len(p.Stages),
		"properties", len(propOps),
		"links", len(linkOps),
		"instructions", len(p.Instructions),
	)
	return p
}

func describeHandle(name string, instances []resolve.Instance) Handle {
	typeName := ident.TypeName(name)
	h := Handle{
		TypeName:       typeName,
		Constructor:    "Build" + typeName,
		Fields:         make([]Field, 0, len(instances)),
		ContainerField: "container",
		Lifecycle: []Lifecycle{
			{Op: "start", Method: "Start", Target: StateActive},
			{Op: "stop", Method: "Stop", Target: StateIdle},
		},
		Teardown: "Close",
	}
	for _, inst := range instances {
		h.Fields = append(h.Fields, Field{Name: inst.Field, Instance: inst.ID})
	}
	return h
}

// Filter returns the instructions of the given kinds, in plan order.
func (p *Plan) Filter(kinds ...OpKind) []Instruction {
	want := make(map[OpKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []Instruction
	for _, in := range p.Instructions {
		if want[in.Op] {
			out = append(out, in)
		}
	}
	return out
}

// Stage returns the stage entry of an instance.
func (p *Plan) Stage(id string) (Stage, bool) {
	for _, s := range p.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}
