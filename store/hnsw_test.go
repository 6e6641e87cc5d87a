package store

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHNSWVectorStoreAddAndSearch(t *testing.T) {
	ctx := context.Background()
	s, err := NewHNSWVectorStore(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Add(ctx, []entities.Chunk{
		{ID: "a", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{1, 0}}},
		{ID: "b", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{0, 1}}},
	}))

	results, err := s.Search(ctx, entities.Embedding{Vector: []float32{1, 0}}, 1, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestHNSWVectorStoreDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s, err := NewHNSWVectorStore(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	err = s.Add(ctx, []entities.Chunk{
		{ID: "a", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{1, 0, 0}}},
	})
	assert.Error(t, err)
}

func TestHNSWVectorStoreDeleteIsIdempotentAndLazy(t *testing.T) {
	ctx := context.Background()
	s, err := NewHNSWVectorStore(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Add(ctx, []entities.Chunk{
		{ID: "a", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{1, 0}}},
	}))
	require.NoError(t, s.Delete(ctx, []string{"a"}))
	require.NoError(t, s.Delete(ctx, []string{"a"}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	stats := s.Stats()
	assert.Equal(t, 0, stats.ValidIDs)
	assert.Equal(t, 1, stats.GraphNodes)
	assert.Equal(t, 1, stats.Orphans)
}

func TestHNSWVectorStoreFilteredSearch(t *testing.T) {
	ctx := context.Background()
	s, err := NewHNSWVectorStore(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Add(ctx, []entities.Chunk{
		{ID: "a", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{1, 0}}},
		{ID: "b", Metadata: entities.ChunkMetadata{DocumentID: "d2"}, Embedding: &entities.Embedding{Vector: []float32{1, 0}}},
	}))

	f := filter.Field("documentId", filter.OpEquals, entities.StringValue("d2"))
	results, err := s.Search(ctx, entities.Embedding{Vector: []float32{1, 0}}, 5, f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}

func TestHNSWVectorStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewHNSWVectorStore(2)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, []entities.Chunk{
		{ID: "a", Metadata: entities.ChunkMetadata{DocumentID: "d1"}, Embedding: &entities.Embedding{Vector: []float32{1, 0}}},
	}))

	path := dir + "/index.hnsw"
	require.NoError(t, s.Save(path))
	require.NoError(t, s.Close())

	loaded, err := NewHNSWVectorStore(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = loaded.Close() })
	require.NoError(t, loaded.Load(path))

	count, err := loaded.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
