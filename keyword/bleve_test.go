package keyword

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBleveIndexAddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.Add(ctx, []entities.Chunk{
		bm25Chunk("a", "the quick brown fox jumps", "d1"),
		bm25Chunk("b", "completely unrelated text", "d1"),
	}))

	results, err := idx.Search(ctx, "fox", 10, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestBleveIndexDeleteRemovesHit(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.Add(ctx, []entities.Chunk{bm25Chunk("a", "removable content", "d1")}))
	require.NoError(t, idx.Delete(ctx, []string{"a"}))

	results, err := idx.Search(ctx, "removable", 10, filter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBleveIndexFilteredSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.Add(ctx, []entities.Chunk{
		bm25Chunk("a", "matching phrase here", "d1"),
		bm25Chunk("b", "matching phrase here", "d2"),
	}))

	f := filter.Field("documentId", filter.OpEquals, entities.StringValue("d2"))
	results, err := idx.Search(ctx, "matching", 10, f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}
