package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/plan"
	"github.com/vk/pipegen/internal/schema"
)

func link(tokens ...string) decl.Decorator {
	d := decl.Decorator{Name: schema.DecoratorLink}
	for _, tok := range tokens {
		d.Args = append(d.Args, decl.Arg{Value: decl.Ident(tok)})
	}
	return d
}

func property(kv ...any) decl.Decorator {
	d := decl.Decorator{Name: schema.DecoratorProperty}
	for i := 0; i < len(kv); i += 2 {
		d.Args = append(d.Args, decl.Arg{Key: kv[i].(string), Value: kv[i+1].(decl.Literal)})
	}
	return d
}

func gstreamerInput(extra ...decl.Decorator) *decl.Tree {
	return &decl.Tree{
		Name:       "GStreamerInput",
		Shape:      decl.ShapeVariants,
		Decorators: append([]decl.Decorator{link("Src", "URIDecodeBin", "CudaUpload")}, extra...),
		Variants: []decl.Variant{
			{Ident: "Src", Decorators: []decl.Decorator{
				decl.Positional(schema.DecoratorName, decl.Pos{}, decl.String("source")),
				property("location", decl.String("test"), "uri", decl.String("hello")),
			}},
			{Ident: "URIDecodeBin"},
			{Ident: "CudaUpload"},
		},
	}
}

func TestCompile_EndToEnd(t *testing.T) {
	res, err := Compile(context.Background(), gstreamerInput(), Options{Mode: diag.ModeStrict})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	p := res.Plan
	assert.Equal(t, "GStreamerInput", p.Schema)

	var got []string
	for _, in := range p.Instructions {
		got = append(got, in.String())
	}
	assert.Equal(t, []string{
		`create src = src("source")`,
		`set src.location = String("test") (from-string)`,
		`set src.uri = String("hello") (from-string)`,
		`create uri_decode_bin = uridecodebin("uri_decode_bin")`,
		`create cuda_upload = cudaupload("cuda_upload")`,
		`create-container "GStreamerInput"`,
		`register src`,
		`register uri_decode_bin`,
		`register cuda_upload`,
		`link src -> uri_decode_bin`,
		`link uri_decode_bin -> cuda_upload`,
	}, got)
}

func TestCompile_Deterministic(t *testing.T) {
	a, err := Compile(context.Background(), gstreamerInput(), Options{})
	require.NoError(t, err)
	b, err := Compile(context.Background(), gstreamerInput(), Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Plan, b.Plan)
	fpA, err := a.Plan.Fingerprint()
	require.NoError(t, err)
	fpB, err := b.Plan.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestCompile_StructuralErrorsHalt(t *testing.T) {
	testCases := []struct {
		name string
		tree *decl.Tree
		code diag.Code
	}{
		{
			name: "not a variant set",
			tree: &decl.Tree{Name: "Bad", Shape: decl.ShapeRecord},
			code: diag.CodeShape,
		},
		{
			name: "single stage link",
			tree: gstreamerInput(link("Src")),
			code: diag.CodeCount,
		},
		{
			name: "count is a string",
			tree: &decl.Tree{Name: "Bad", Shape: decl.ShapeVariants, Variants: []decl.Variant{
				{Ident: "Worker", Decorators: []decl.Decorator{
					decl.Positional(schema.DecoratorCount, decl.Pos{}, decl.String("3")),
				}},
			}},
			code: diag.CodeDecoratorValueType,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compile(context.Background(), tc.tree, Options{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, diag.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestCompile_PermissiveCollectsWarnings(t *testing.T) {
	tree := gstreamerInput(link("Src", "Missing"))
	tree.Variants[2].Decorators = []decl.Decorator{property("bad", decl.Unsupported("[1]"))}

	res, err := Compile(context.Background(), tree, Options{Mode: diag.ModePermissive})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, diag.CodeUnresolvedLink, res.Diagnostics[0].Code)
	assert.Equal(t, diag.CodeUnsupportedLiteral, res.Diagnostics[1].Code)
	assert.Len(t, res.Plan.Filter(plan.OpLink), 2)
	assert.Len(t, res.Plan.Filter(plan.OpSetProperty), 2)

	_, err = Compile(context.Background(), tree, Options{Mode: diag.ModeStrict})
	require.Error(t, err)
	assert.True(t, diag.HasCode(err, diag.CodeUnresolvedLink))
}

func TestCompile_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_, err := Compile(context.Background(), gstreamerInput(), Options{Metrics: m})
	require.NoError(t, err)
	_, err = Compile(context.Background(), gstreamerInput(link("Src")), Options{Metrics: m})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues(string(diag.CodeCount), "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Instances.WithLabelValues("GStreamerInput")))

	expected := `
# HELP pipegen_compiler_compilations_total Total number of schema compilations by result
# TYPE pipegen_compiler_compilations_total counter
pipegen_compiler_compilations_total{result="error"} 1
pipegen_compiler_compilations_total{result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pipegen_compiler_compilations_total"))
}
