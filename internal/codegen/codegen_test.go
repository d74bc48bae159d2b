package codegen

import (
	"context"
	"flag"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/internal/compiler"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/plan"
	"github.com/vk/pipegen/internal/schema"
)

var update = flag.Bool("update", false, "rewrite the golden package from the generator")

func compile(t *testing.T, tree *decl.Tree) *plan.Plan {
	t.Helper()
	res, err := compiler.Compile(context.Background(), tree, compiler.Options{})
	require.NoError(t, err)
	return res.Plan
}

func gstreamerInput() *decl.Tree {
	link := decl.Decorator{Name: schema.DecoratorLink}
	for _, tok := range []string{"Src", "URIDecodeBin", "Worker_0", "Sink"} {
		link.Args = append(link.Args, decl.Arg{Value: decl.Ident(tok)})
	}
	return &decl.Tree{
		Name:       "GStreamerInput",
		Shape:      decl.ShapeVariants,
		Decorators: []decl.Decorator{link},
		Variants: []decl.Variant{
			{Ident: "Src", Decorators: []decl.Decorator{
				decl.Positional(schema.DecoratorName, decl.Pos{}, decl.String("source")),
				{Name: schema.DecoratorProperty, Args: []decl.Arg{
					{Key: "location", Value: decl.String("test")},
					{Key: "blocksize", Value: decl.Int("4096")},
					{Key: "sep", Value: decl.Char(',')},
				}},
			}},
			{Ident: "URIDecodeBin"},
			{Ident: "Worker", Decorators: []decl.Decorator{
				decl.Positional(schema.DecoratorCount, decl.Pos{}, decl.Int("2")),
			}},
			{Ident: "Sink"},
		},
	}
}

func TestGenerate(t *testing.T) {
	p := compile(t, gstreamerInput())

	src, err := Generate(context.Background(), Options{Package: "gen"}, p)
	require.NoError(t, err)
	out := string(src)

	for _, want := range []string{
		"// Code generated by pipegen. DO NOT EDIT.\n",
		"package gen\n",
		`import "github.com/vk/pipegen/pkg/pipeline"`,
		"type GStreamerInput struct {",
		"func BuildGStreamerInput(f pipeline.Factory) *GStreamerInput {",
		`src := pipeline.MustMakeElement(f, "src", "source")`,
		`pipeline.MustSetPropertyFromString(src, "location", "test")`,
		`pipeline.MustSetProperty(src, "blocksize", int64(4096))`,
		`pipeline.MustSetProperty(src, "sep", ',')`,
		`uriDecodeBin := pipeline.MustMakeElement(f, "uridecodebin", "uri_decode_bin")`,
		`worker1 := pipeline.MustMakeElement(f, "worker", "worker_1")`,
		`container := pipeline.MustNewContainer(f, "GStreamerInput")`,
		"pipeline.MustAdd(container, worker0)",
		"pipeline.MustLink(src, uriDecodeBin)",
		"pipeline.MustLink(uriDecodeBin, worker0)",
		"pipeline.MustLink(worker0, sink)",
		"func (p *GStreamerInput) Start() {\n\tpipeline.MustSetState(p.container, pipeline.Active)\n}",
		"func (p *GStreamerInput) Stop() {\n\tpipeline.MustSetState(p.container, pipeline.Idle)\n}",
		"\tif p.closed {\n\t\treturn\n\t}\n\tp.closed = true\n\tp.Stop()\n",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "worker :=")

	fp, err := p.Fingerprint()
	require.NoError(t, err)
	assert.Contains(t, out, "// Plan fingerprint: "+fp)
}

// The golden package compiles the generated GStreamerInput handle and
// drives it against the recording runtime.
func TestGenerate_Golden(t *testing.T) {
	src, err := Generate(context.Background(), Options{Package: "golden"}, compile(t, gstreamerInput()))
	require.NoError(t, err)

	path := filepath.Join("golden", "gstreamer_input.go")
	if *update {
		require.NoError(t, os.WriteFile(path, src, 0o644))
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(src))
}

func TestGenerate_ParsesAsGo(t *testing.T) {
	p := compile(t, gstreamerInput())
	src, err := Generate(context.Background(), Options{Package: "gen"}, p)
	require.NoError(t, err)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	require.NoError(t, err)

	var funcs []string
	var fields []string
	ast.Inspect(f, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncDecl:
			funcs = append(funcs, n.Name.Name)
		case *ast.StructType:
			for _, fld := range n.Fields.List {
				for _, name := range fld.Names {
					fields = append(fields, name.Name)
				}
			}
		}
		return true
	})
	assert.Equal(t, []string{"BuildGStreamerInput", "Start", "Stop", "Close"}, funcs)
	assert.Equal(t, []string{"Src", "UriDecodeBin", "Worker0", "Worker1", "Sink", "container", "closed"}, fields)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(context.Background(), Options{Package: "gen"}, compile(t, gstreamerInput()))
	require.NoError(t, err)
	b, err := Generate(context.Background(), Options{Package: "gen"}, compile(t, gstreamerInput()))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_MultipleSchemas(t *testing.T) {
	other := &decl.Tree{Name: "Tee", Shape: decl.ShapeVariants, Variants: []decl.Variant{{Ident: "Func"}}}

	src, err := Generate(context.Background(), Options{Package: "gen"}, compile(t, gstreamerInput()), compile(t, other))
	require.NoError(t, err)
	assert.Contains(t, string(src), "func BuildTee(f pipeline.Factory) *Tee {")
	assert.Contains(t, string(src), `funcElem := pipeline.MustMakeElement(f, "func", "func")`)

	_, err = Generate(context.Background(), Options{Package: "gen"}, compile(t, other), compile(t, other))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both generate type Tee")
}

func TestGenerate_Options(t *testing.T) {
	p := compile(t, gstreamerInput())

	_, err := Generate(context.Background(), Options{}, p)
	require.Error(t, err)
	_, err = Generate(context.Background(), Options{Package: "not-valid"}, p)
	require.Error(t, err)

	src, err := Generate(context.Background(), Options{Package: "gen", RuntimeImport: "example.com/rt/pipeline"}, p)
	require.NoError(t, err)
	assert.Contains(t, string(src), `import "example.com/rt/pipeline"`)
}

func TestGenerate_LocalNamesAreUnique(t *testing.T) {
	tree := &decl.Tree{Name: "Clash", Shape: decl.ShapeVariants, Variants: []decl.Variant{
		{Ident: "F"}, {Ident: "FElem"}, {Ident: "FElem2"},
	}}
	src, err := Generate(context.Background(), Options{Package: "gen"}, compile(t, tree))
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, `fElem := pipeline.MustMakeElement(f, "f", "f")`)
	assert.Contains(t, out, `fElem2 := pipeline.MustMakeElement(f, "felem", "f_elem")`)
	assert.Contains(t, out, `fElem22 := pipeline.MustMakeElement(f, "felem2", "f_elem2")`)

	// Every constructor local is declared exactly once.
	file, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, 0)
	require.NoError(t, err)
	declared := map[string]int{}
	ast.Inspect(file, func(n ast.Node) bool {
		if as, ok := n.(*ast.AssignStmt); ok && as.Tok == token.DEFINE {
			for _, lhs := range as.Lhs {
				declared[lhs.(*ast.Ident).Name]++
			}
		}
		return true
	})
	for name, count := range declared {
		assert.Equal(t, 1, count, "%s declared %d times", name, count)
	}
	assert.Len(t, declared, 4)
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "uriDecodeBin", localName("uri_decode_bin"))
	assert.Equal(t, "worker0", localName("worker_0"))
	assert.Equal(t, "typeElem", localName("type"))
	assert.Equal(t, "containerElem", localName("container"))
	assert.Equal(t, "fElem", localName("f"))
}
