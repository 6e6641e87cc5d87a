package keyword

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bm25Chunk(id, content, docID string) entities.Chunk {
	return entities.Chunk{ID: id, Content: content, Metadata: entities.ChunkMetadata{DocumentID: docID}}
}

func TestMemoryIndexRejectsBadConfig(t *testing.T) {
	_, err := NewMemoryIndex(Config{K1: 0, B: 0.75})
	assert.Error(t, err)

	_, err = NewMemoryIndex(Config{K1: 1.2, B: 1.5})
	assert.Error(t, err)
}

func TestMemoryIndexEmptyQueryReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, []entities.Chunk{bm25Chunk("a", "hello world", "d1")}))

	results, err := idx.Search(ctx, "   ", 10, filter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndexScoresMoreFrequentTermHigher(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, []entities.Chunk{
		bm25Chunk("a", "database database database connection pool", "d1"),
		bm25Chunk("b", "database connection", "d1"),
		bm25Chunk("c", "completely unrelated content about cooking", "d1"),
	}))

	results, err := idx.Search(ctx, "database", 10, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "b", results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryIndexRemovalNeverNegativeDocFreq(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, []entities.Chunk{bm25Chunk("a", "shared term", "d1")}))
	require.NoError(t, idx.Delete(ctx, []string{"a"}))
	require.NoError(t, idx.Delete(ctx, []string{"a"})) // idempotent, must not underflow

	assert.Equal(t, 0, idx.docFreqs["shared"])
	count, _ := idx.Count(ctx)
	assert.Equal(t, 0, count)
}

func TestMemoryIndexUpdateReplacesContribution(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, []entities.Chunk{bm25Chunk("a", "apple banana", "d1")}))
	require.NoError(t, idx.Add(ctx, []entities.Chunk{bm25Chunk("a", "cherry date", "d1")}))

	results, err := idx.Search(ctx, "apple", 10, filter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search(ctx, "cherry", 10, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestMemoryIndexFilteredSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, []entities.Chunk{
		bm25Chunk("a", "important keyword match", "d1"),
		bm25Chunk("b", "important keyword match", "d2"),
	}))

	f := filter.Field("documentId", filter.OpEquals, entities.StringValue("d2"))
	results, err := idx.Search(ctx, "keyword", 10, f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}
