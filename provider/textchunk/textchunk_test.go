package textchunk

import (
	"strings"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyContentReturnsNil(t *testing.T) {
	c := New(0, 0)
	chunks, err := c.Chunk(entities.Document{ID: "d1", Content: "   "})
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestChunkSingleParagraphReturnsOneChunk(t *testing.T) {
	c := New(400, 40)
	chunks, err := c.Chunk(entities.Document{ID: "d1", Content: "a short paragraph of text"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "d1-0", chunks[0].ID)
	assert.Equal(t, "d1", chunks[0].Metadata.DocumentID)
}

func TestChunkSplitsOnTokenBudget(t *testing.T) {
	c := New(10, 2)
	para := strings.Repeat("word ", 20)
	doc := entities.Document{ID: "d2", Content: para + "\n\n" + para}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Metadata.Index)
	}
}

func TestChunkOverlapsConsecutiveChunks(t *testing.T) {
	c := New(8, 3)
	para := strings.Repeat("alpha beta gamma delta ", 10)
	doc := entities.Document{ID: "d3", Content: para + "\n\n" + para}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	prevWords := strings.Fields(chunks[0].Content)
	wantTail := prevWords[len(prevWords)-3]
	nextWords := strings.Fields(chunks[1].Content)
	assert.Equal(t, wantTail, nextWords[0])
}
