package yamlsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/schema"
)

const gstreamerInput = `pipeline: GStreamerInput
links:
  - [Src, URIDecodeBin, CudaUpload]
stages:
  - Src: {name: source}
  - URIDecodeBin
  - CudaUpload:
  - Worker: {count: 3}
  - X:
      property:
        - {location: test}
        - {uri: "hello"}
        - {threads: 4, ratio: 0.5, sync: true}
        - {sep: !char ","}
        - {list: [1, 2]}
        - {nothing: null}
`

func parse(t *testing.T, src string) []*decl.Tree {
	t.Helper()
	trees, err := Parse(context.Background(), "main.yaml", []byte(src))
	require.NoError(t, err)
	return trees
}

func TestParse_Pipeline(t *testing.T) {
	trees := parse(t, gstreamerInput)
	require.Len(t, trees, 1)
	tree := trees[0]

	assert.Equal(t, "GStreamerInput", tree.Name)
	assert.Equal(t, decl.ShapeVariants, tree.Shape)

	var idents []string
	for _, v := range tree.Variants {
		idents = append(idents, v.Ident)
		assert.Empty(t, v.Payload)
	}
	assert.Equal(t, []string{"Src", "URIDecodeBin", "CudaUpload", "Worker", "X"}, idents)

	require.Len(t, tree.Decorators, 1)
	link := tree.Decorators[0]
	assert.Equal(t, schema.DecoratorLink, link.Name)
	assert.Equal(t, decl.Pos{File: "main.yaml", Line: 3, Column: 5}, link.Pos)
	require.Len(t, link.Args, 3)
	assert.Equal(t, decl.Ident("URIDecodeBin"), link.Args[1].Value)

	src := tree.Variants[0]
	require.Len(t, src.Decorators, 1)
	assert.Equal(t, schema.DecoratorName, src.Decorators[0].Name)
	assert.Equal(t, decl.String("source"), src.Decorators[0].Args[0].Value)

	assert.Equal(t, decl.Int("3"), tree.Variants[3].Decorators[0].Args[0].Value)
}

func TestParse_PropertyLiterals(t *testing.T) {
	x := parse(t, gstreamerInput)[0].Variants[4]
	require.Len(t, x.Decorators, 1)
	prop := x.Decorators[0]

	var keys []string
	var values []decl.Literal
	for _, a := range prop.Args {
		keys = append(keys, a.Key)
		values = append(values, a.Value)
	}
	assert.Equal(t, []string{"location", "uri", "threads", "ratio", "sync", "sep", "list", "nothing"}, keys)
	assert.Equal(t, []decl.Literal{
		decl.String("test"),
		decl.String("hello"),
		decl.Int("4"),
		decl.Float("0.5"),
		decl.Bool(true),
		decl.Char(','),
		decl.Unsupported("[1, 2]"),
		decl.Unsupported("null"),
	}, values)
}

func TestParse_Shapes(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		shape decl.Shape
	}{
		{"sequence root", "- a\n- b\n", decl.ShapeUnknown},
		{"no stages", "pipeline: P\nfields: {a: 1}\n", decl.ShapeRecord},
		{"stages not a list", "pipeline: P\nstages: {A: {}}\n", decl.ShapeRecord},
		{"no name", "stages: [A]\n", decl.ShapeRecord},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trees := parse(t, tc.src)
			require.Len(t, trees, 1)
			assert.Equal(t, tc.shape, trees[0].Shape)
		})
	}
}

func TestParse_Payload(t *testing.T) {
	trees := parse(t, "pipeline: P\nstages:\n  - X: [payload]\n")
	assert.Equal(t, []string{"payload"}, trees[0].Variants[0].Payload)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "pipeline: [unclosed\n", "failed to parse"},
		{"two keys in a stage", "pipeline: P\nstages:\n  - {A: {}, B: {}}\n", "exactly one key"},
		{"link not a list", "pipeline: P\nstages: [A]\nlinks: [A]\n", "link must be a list"},
		{"links not a sequence", "pipeline: P\nstages: [A]\nlinks: A\n", "links must be a sequence"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "bad.yaml", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoader_MultipleDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gstreamerInput+"---\npipeline: Tee\nstages: [A, B]\n"), 0o600))

	trees, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, "Tee", trees[1].Name)
	assert.Equal(t, path, trees[1].Pos.File)
	assert.ElementsMatch(t, []string{".yaml", ".yml"}, NewLoader().Extensions())
}
