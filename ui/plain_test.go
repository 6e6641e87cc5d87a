package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Aman-CERP/ragkit/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestPlainRendererUpdateProgressOutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.UpdateProgress(pipeline.IngestionProgress{
		Phase:      pipeline.PhaseEmbedding,
		Current:    5,
		Total:      10,
		DocumentID: "doc1",
	})

	output := buf.String()
	assert.Contains(t, output, "[EMBED]")
	assert.Contains(t, output, "5/10")
	assert.Contains(t, output, "doc1")
}

func TestPlainRendererUpdateProgressNoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	phases := []pipeline.IngestionPhase{
		pipeline.PhaseValidating, pipeline.PhaseChunking,
		pipeline.PhaseEmbedding, pipeline.PhaseStoring, pipeline.PhaseComplete,
	}
	for _, phase := range phases {
		r.UpdateProgress(pipeline.IngestionProgress{Phase: phase, Current: 1, Total: 2, Message: "working"})
	}

	output := buf.String()
	assert.NotContains(t, output, "\x1b[")
}

func TestPlainRendererAddErrorFormatsDocumentID(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.AddError(ErrorEvent{DocumentID: "doc2", Err: errors.New("boom")})

	output := buf.String()
	assert.Contains(t, output, "ERROR: doc2: boom")
}

func TestPlainRendererCompleteSummarizesCounts(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.Complete(CompletionStats{Documents: 3, Chunks: 12, Duration: "1.2s", Errors: 1})

	output := buf.String()
	assert.Contains(t, output, "3 documents")
	assert.Contains(t, output, "12 chunks")
	assert.Contains(t, output, "(1 errors)")
}

func TestNewRendererPicksPlainForNonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewRenderer(NewConfig(buf))

	_, isPlain := r.(*PlainRenderer)
	assert.True(t, isPlain)
}
