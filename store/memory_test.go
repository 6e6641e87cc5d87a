package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkWith(id string, vec []float32, docID string) entities.Chunk {
	return entities.Chunk{
		ID:        id,
		Content:   id,
		Metadata:  entities.ChunkMetadata{DocumentID: docID},
		Embedding: &entities.Embedding{Vector: vec},
	}
}

func chunkWithModel(id string, vec []float32, docID, model string) entities.Chunk {
	return entities.Chunk{
		ID:        id,
		Content:   id,
		Metadata:  entities.ChunkMetadata{DocumentID: docID},
		Embedding: &entities.Embedding{Vector: vec, Model: model},
	}
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWith("x", []float32{1, 0}, "d1")}))
	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWith("x", []float32{0, 1}, "d1")}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.Search(ctx, entities.Embedding{Vector: []float32{0, 1}}, 1, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMemoryStoreDimensionMismatchFails(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWith("a", []float32{1, 0, 0}, "d1")}))

	err := s.Add(ctx, []entities.Chunk{chunkWith("b", []float32{1, 0}, "d1")})
	assert.Error(t, err)
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{
		chunkWith("a", []float32{1, 0}, "d1"),
		chunkWith("b", []float32{0.9, 0.1}, "d1"),
		chunkWith("c", []float32{0, 1}, "d1"),
	}))

	results, err := s.Search(ctx, entities.Embedding{Vector: []float32{1, 0}}, 10, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWith("a", []float32{1, 0}, "d1")}))
	require.NoError(t, s.Delete(ctx, []string{"a"}))
	require.NoError(t, s.Delete(ctx, []string{"a"})) // idempotent
	count, _ := s.Count(ctx)
	assert.Equal(t, 0, count)
}

func TestMemoryStoreFilteredSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{
		chunkWith("a", []float32{1, 0}, "d1"),
		chunkWith("b", []float32{1, 0}, "d2"),
	}))

	f := filter.Field("documentId", filter.OpEquals, entities.StringValue("d2"))
	results, err := s.Search(ctx, entities.Embedding{Vector: []float32{1, 0}}, 10, f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}

func TestMemoryStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{
		chunkWith("a", []float32{1, 0, 0.5}, "d1"),
		chunkWith("b", []float32{0, 1, 0.25}, "d1"),
	}))

	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, s.Save(ctx, path))

	loaded := NewMemoryStore()
	require.NoError(t, loaded.Load(ctx, path))

	countA, _ := s.Count(ctx)
	countB, _ := loaded.Count(ctx)
	assert.Equal(t, countA, countB)

	results, err := loaded.Search(ctx, entities.Embedding{Vector: []float32{1, 0, 0.5}}, 2, filter.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestMemoryStoreAddRejectsModelMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWithModel("a", []float32{1, 0}, "d1", "static-256")}))

	err := s.Add(ctx, []entities.Chunk{chunkWithModel("b", []float32{0, 1}, "d1", "static-768")})
	assert.Error(t, err)
	kind, ok := ragerr.GetKind(err)
	assert.True(t, ok)
	assert.Equal(t, ragerr.KindEmbeddingModelMismatch, kind)
}

func TestMemoryStoreEmbedderModelTracksFirstInsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	assert.Equal(t, "", s.EmbedderModel())

	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWithModel("a", []float32{1, 0}, "d1", "static-256")}))
	assert.Equal(t, "static-256", s.EmbedderModel())
}

func TestMemoryStoreLoadRejectsIncompatibleModel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, []entities.Chunk{chunkWithModel("a", []float32{1, 0}, "d1", "static-256")}))
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, s.Save(ctx, path))

	loaded := NewMemoryStore()
	require.NoError(t, loaded.Add(ctx, []entities.Chunk{chunkWithModel("z", []float32{0, 1}, "d2", "static-768")}))

	err := loaded.Load(ctx, path)
	assert.Error(t, err)
}
