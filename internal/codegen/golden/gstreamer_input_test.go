package golden

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/pkg/pipeline"
	"github.com/vk/pipegen/pkg/pipeline/pipelinetest"
)

func TestBuildGStreamerInput(t *testing.T) {
	rec := pipelinetest.New()

	p := BuildGStreamerInput(rec)

	assert.Equal(t, []string{
		"make-element source src",
		`set-property source.location "test"`,
		"set-property source.blocksize int64(4096)",
		"set-property source.sep int32(44)",
		"make-element uri_decode_bin uridecodebin",
		"make-element worker_0 worker",
		"make-element worker_1 worker",
		"make-element sink sink",
		"new-container GStreamerInput",
		"register source in GStreamerInput",
		"register uri_decode_bin in GStreamerInput",
		"register worker_0 in GStreamerInput",
		"register worker_1 in GStreamerInput",
		"register sink in GStreamerInput",
		"link source->uri_decode_bin",
		"link uri_decode_bin->worker_0",
		"link worker_0->sink",
	}, rec.Lines())

	assert.Equal(t, "source", p.Src.Name())
	assert.Equal(t, "worker_1", p.Worker1.Name())
	assert.Empty(t, p.Worker1.(*pipelinetest.Element).Links)
}

func TestGStreamerInput_CloseStopsOnce(t *testing.T) {
	rec := pipelinetest.New()
	p := BuildGStreamerInput(rec)
	rec.Reset()

	p.Start()
	p.Close()
	p.Close()

	assert.Equal(t, []string{
		"set-state Active on GStreamerInput",
		"set-state Idle on GStreamerInput",
	}, rec.Lines())
	assert.Equal(t, pipeline.Idle, p.container.(*pipelinetest.Container).State)
}

func TestGStreamerInput_CloseWithoutStart(t *testing.T) {
	rec := pipelinetest.New()
	p := BuildGStreamerInput(rec)
	rec.Reset()

	func() {
		defer p.Close()
	}()
	p.Close()

	assert.Equal(t, 1, rec.Count(pipelinetest.OpSetState))
	assert.Equal(t, []string{"set-state Idle on GStreamerInput"}, rec.Lines())
}

func TestBuildGStreamerInput_PanicsOnRuntimeFailure(t *testing.T) {
	rec := pipelinetest.New()
	rec.Fail(pipelinetest.OpLink, "uri_decode_bin->worker_0", nil)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		perr, ok := r.(*pipeline.Error)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, "link", perr.Op)
		assert.Equal(t, "uri_decode_bin -> worker_0", perr.Target)
		assert.True(t, errors.Is(perr, pipelinetest.ErrInjected))
	}()
	BuildGStreamerInput(rec)
}
