// Package codegen renders construction plans as Go source against the
// pkg/pipeline runtime.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"text/template"

	"github.com/iancoleman/strcase"
	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/plan"
	"github.com/vk/pipegen/internal/props"
)

// DefaultRuntimeImport is the import path of the runtime library.
const DefaultRuntimeImport = "github.com/vk/pipegen/pkg/pipeline"

// Options control rendering.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// RuntimeImport overrides DefaultRuntimeImport. The imported package
	// must be named pipeline.
	RuntimeImport string
}

type fileView struct {
	Package       string
	RuntimeImport string
	Types         []typeView
}

type typeView struct {
	Schema      string
	TypeName    string
	Constructor string
	Fingerprint string
	Fields      []fieldView
	Steps       []stepView
}

type fieldView struct {
	Name string
	Var  string
}

type stepView struct {
	Op         plan.OpKind
	Var        string
	Factory    string
	Name       string
	Key        string
	Value      string
	FromString bool
	From       string
	To         string
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by pipegen. DO NOT EDIT.

package {{.Package}}

import "{{.RuntimeImport}}"
{{range .Types}}
// {{.TypeName}} owns the elements of the {{.Schema}} pipeline and the
// container they run in.
//
// Plan fingerprint: {{.Fingerprint}}
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.Name}} pipeline.Element
{{- end}}

	container pipeline.Container
	closed    bool
}

// {{.Constructor}} creates every element of {{.Schema}}, configures and
// registers it, and links the elements together. It panics if the runtime
// rejects any step.
func {{.Constructor}}(f pipeline.Factory) *{{.TypeName}} {
{{- range .Steps}}
{{- if eq .Op "create"}}
	{{.Var}} := pipeline.MustMakeElement(f, {{printf "%q" .Factory}}, {{printf "%q" .Name}})
{{- else if eq .Op "set-property"}}
{{- if .FromString}}
	pipeline.MustSetPropertyFromString({{.Var}}, {{printf "%q" .Key}}, {{.Value}})
{{- else}}
	pipeline.MustSetProperty({{.Var}}, {{printf "%q" .Key}}, {{.Value}})
{{- end}}
{{- else if eq .Op "create-container"}}

	container := pipeline.MustNewContainer(f, {{printf "%q" .Name}})
{{- else if eq .Op "register"}}
	pipeline.MustAdd(container, {{.Var}})
{{- else if eq .Op "link"}}
	pipeline.MustLink({{.From}}, {{.To}})
{{- end}}
{{- end}}

	return &{{.TypeName}}{
{{- range .Fields}}
		{{.Name}}: {{.Var}},
{{- end}}
		container: container,
	}
}

// Start moves the pipeline to the Active state. It panics if the
// transition is rejected.
func (p *{{.TypeName}}) Start() {
	pipeline.MustSetState(p.container, pipeline.Active)
}

// Stop moves the pipeline to the Idle state. It panics if the transition
// is rejected.
func (p *{{.TypeName}}) Stop() {
	pipeline.MustSetState(p.container, pipeline.Idle)
}

// Close stops the pipeline once. Later calls do nothing.
func (p *{{.TypeName}}) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.Stop()
}
{{end}}`))

// Generate renders one Go file declaring a handle type per plan. The output
// is gofmt-formatted and depends only on the plans and opts.
func Generate(ctx context.Context, opts Options, plans ...*plan.Plan) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	if opts.Package == "" {
		return nil, fmt.Errorf("codegen: package name is required")
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("codegen: %q is not a valid package name", opts.Package)
	}
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}

	view := fileView{Package: opts.Package, RuntimeImport: opts.RuntimeImport}
	seen := make(map[string]string, len(plans))
	for _, p := range plans {
		if prev, dup := seen[p.Handle.TypeName]; dup {
			return nil, fmt.Errorf("codegen: schemas %q and %q both generate type %s", prev, p.Schema, p.Handle.TypeName)
		}
		seen[p.Handle.TypeName] = p.Schema

		tv, err := newTypeView(p)
		if err != nil {
			return nil, err
		}
		view.Types = append(view.Types, tv)
		logger.Debug("Rendering pipeline type.", "schema", p.Schema, "type", tv.TypeName, "steps", len(tv.Steps))
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("codegen: failed to render template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: generated code does not parse: %w", err)
	}
	return src, nil
}

func newTypeView(p *plan.Plan) (typeView, error) {
	fp, err := p.Fingerprint()
	if err != nil {
		return typeView{}, err
	}

	tv := typeView{
		Schema:      p.Schema,
		TypeName:    p.Handle.TypeName,
		Constructor: p.Handle.Constructor,
		Fingerprint: fp,
	}

	vars := make(map[string]string, len(p.Stages))
	used := make(map[string]bool, len(p.Stages))
	for _, f := range p.Handle.Fields {
		v := localName(f.Instance)
		for n := 2; used[v]; n++ {
			v = fmt.Sprintf("%s%d", localName(f.Instance), n)
		}
		used[v] = true
		vars[f.Instance] = v
		tv.Fields = append(tv.Fields, fieldView{Name: f.Name, Var: v})
	}

	lookup := func(id string) (string, error) {
		v, ok := vars[id]
		if !ok {
			return "", fmt.Errorf("codegen: %s: instruction references unknown instance %q", p.Schema, id)
		}
		return v, nil
	}

	for _, in := range p.Instructions {
		st := stepView{Op: in.Op, Factory: in.Factory, Name: in.Name}
		switch in.Op {
		case plan.OpCreate, plan.OpRegister:
			if st.Var, err = lookup(in.Instance); err != nil {
				return typeView{}, err
			}
		case plan.OpSetProperty:
			if st.Var, err = lookup(in.Instance); err != nil {
				return typeView{}, err
			}
			st.Key = in.Property.Key
			st.FromString = in.Property.Setter == props.SetterFromString
			if st.FromString {
				st.Value = strconv.Quote(in.Property.Value.Str)
			} else {
				st.Value = in.Property.Value.GoLiteral()
			}
		case plan.OpLink:
			if st.From, err = lookup(in.From); err != nil {
				return typeView{}, err
			}
			if st.To, err = lookup(in.To); err != nil {
				return typeView{}, err
			}
		}
		tv.Steps = append(tv.Steps, st)
	}
	return tv, nil
}

// taken are names already bound inside a generated constructor.
var taken = map[string]bool{
	"f":         true,
	"container": true,
	"pipeline":  true,
	"p":         true,
}

// localName is the preferred variable holding an instance inside the
// constructor. Distinct instances can share it; newTypeView numbers repeats.
func localName(id string) string {
	v := strcase.ToLowerCamel(id)
	if token.IsKeyword(v) || taken[v] || !token.IsIdentifier(v) {
		v += "Elem"
	}
	return v
}
