package plan

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/links"
	"github.com/vk/pipegen/internal/props"
	"github.com/vk/pipegen/internal/resolve"
	"github.com/vk/pipegen/internal/schema"
)

func buildFixture(t *testing.T) *Plan {
	t.Helper()
	ctx := context.Background()

	s := &schema.PipelineSchema{
		Name: "GStreamerInput",
		Stages: []schema.Stage{
			{Raw: "Src", Canonical: "src", Decorators: []decl.Decorator{
				decl.Positional(schema.DecoratorName, decl.Pos{}, decl.String("source")),
			}},
			{Raw: "Worker", Canonical: "worker", Decorators: []decl.Decorator{
				decl.Positional(schema.DecoratorCount, decl.Pos{}, decl.Int("2")),
			}},
			{Raw: "Sink", Canonical: "sink"},
		},
		Links: []schema.LinkChain{
			{Tokens: []string{"Src", "worker_0", "Sink"}},
			{Tokens: []string{"Src", "worker_1", "Sink"}},
		},
		Properties: []schema.PropertyAssignment{
			{Stage: "src", Key: "location", Value: decl.String("test")},
			{Stage: "worker", Key: "threads", Value: decl.Int("4")},
		},
	}

	res, err := resolve.Resolve(ctx, s, diag.ModeStrict)
	require.NoError(t, err)
	lr, err := links.Analyze(ctx, s.Links, res, diag.ModeStrict)
	require.NoError(t, err)
	pr, err := props.Assign(ctx, s.Properties, res, diag.ModeStrict)
	require.NoError(t, err)

	return Build(ctx, s.Name, res, lr.Ops, pr.Ops)
}

func TestBuild_PhaseOrder(t *testing.T) {
	p := buildFixture(t)

	var got []string
	for _, in := range p.Instructions {
		got = append(got, in.String())
	}
	assert.Equal(t, []string{
		`create src = src("source")`,
		`set src.location = String("test") (from-string)`,
		`create worker_0 = worker("worker_0")`,
		`set worker_0.threads = Int64(4) (value)`,
		`create worker_1 = worker("worker_1")`,
		`set worker_1.threads = Int64(4) (value)`,
		`create sink = sink("sink")`,
		`create-container "GStreamerInput"`,
		`register src`,
		`register worker_0`,
		`register worker_1`,
		`register sink`,
		`link src -> worker_0`,
		`link worker_0 -> sink`,
		`link src -> worker_1`,
		`link worker_1 -> sink`,
	}, got)
}

func TestBuild_HandleDescription(t *testing.T) {
	p := buildFixture(t)

	h := p.Handle
	assert.Equal(t, "GStreamerInput", h.TypeName)
	assert.Equal(t, "BuildGStreamerInput", h.Constructor)
	assert.Equal(t, "container", h.ContainerField)
	assert.Equal(t, "Close", h.Teardown)
	assert.Equal(t, []Field{
		{Name: "Src", Instance: "src"},
		{Name: "Worker0", Instance: "worker_0"},
		{Name: "Worker1", Instance: "worker_1"},
		{Name: "Sink", Instance: "sink"},
	}, h.Fields)
	require.Len(t, h.Lifecycle, 2)
	assert.Equal(t, StateActive, h.Lifecycle[0].Target)
	assert.Equal(t, "stop", h.Lifecycle[1].Op)
	assert.Equal(t, StateIdle, h.Lifecycle[1].Target)
}

func TestPlan_Filter(t *testing.T) {
	p := buildFixture(t)

	assert.Len(t, p.Filter(OpCreate), 4)
	assert.Len(t, p.Filter(OpLink), 4)
	assert.Len(t, p.Filter(OpCreate, OpRegister), 8)
	assert.Empty(t, p.Filter())

	st, ok := p.Stage("worker_1")
	require.True(t, ok)
	assert.Equal(t, 1, st.Index)
	_, ok = p.Stage("worker")
	assert.False(t, ok)
}

func TestPlan_Determinism(t *testing.T) {
	a, b := buildFixture(t), buildFixture(t)
	assert.Equal(t, a, b)

	var bufA, bufB bytes.Buffer
	require.NoError(t, a.Encode(&bufA))
	require.NoError(t, b.Encode(&bufB))
	assert.Equal(t, bufA.String(), bufB.String())

	fpA, err := a.Fingerprint()
	require.NoError(t, err)
	fpB, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
	assert.Len(t, fpA, 64)
}

func TestPlan_FingerprintChangesWithContent(t *testing.T) {
	a, b := buildFixture(t), buildFixture(t)
	b.Instructions[1].Property.Value.Str = "other"

	fpA, err := a.Fingerprint()
	require.NoError(t, err)
	fpB, err := b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}

func TestPlan_Encode(t *testing.T) {
	p := buildFixture(t)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	out := buf.String()

	assert.Contains(t, out, "schema: GStreamerInput\n")
	assert.Contains(t, out, "- op: create-container\n    name: GStreamerInput\n")
	assert.Contains(t, out, "      key: location\n      value:\n        kind: string\n        value: test\n      setter: from-string\n")
	assert.NotContains(t, out, "pos")
}

func TestEncodeDocuments(t *testing.T) {
	p := buildFixture(t)
	fp, err := p.Fingerprint()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeDocuments(&buf, []*Plan{p, p}))
	out := buf.String()

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("fingerprint: "+fp)))
	assert.Contains(t, out, "\n---\n")
}
