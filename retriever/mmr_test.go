package retriever

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMMRRetrieverDiversifiesCandidates(t *testing.T) {
	base := &fakeRetriever{results: []entities.RetrievalResult{
		{Chunk: entities.Chunk{ID: "a", Content: "aaaaaaaaaa"}, Score: 0.9},
		{Chunk: entities.Chunk{ID: "b", Content: "aaaaaaaaab"}, Score: 0.89},
		{Chunk: entities.Chunk{ID: "c", Content: "zzzzzzzzzz"}, Score: 0.8},
	}}
	embedder := &stubEmbedder{dims: 8}
	r := NewMMRRetriever(base, embedder, WithLambda(0.5))

	results, err := r.Retrieve(context.Background(), "query", 2, filter.Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, base.calls)
}

func TestMMRRetrieverEmptyCandidatesReturnsEmpty(t *testing.T) {
	base := &fakeRetriever{}
	embedder := &stubEmbedder{dims: 4}
	r := NewMMRRetriever(base, embedder)

	results, err := r.Retrieve(context.Background(), "query", 5, filter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMMRRetrieverUsesPrecomputedEmbeddings(t *testing.T) {
	emb := entities.Embedding{Vector: []float32{1, 0, 0, 0}, Model: "stub"}
	base := &fakeRetriever{results: []entities.RetrievalResult{
		{Chunk: entities.Chunk{ID: "a", Content: "x"}.WithEmbedding(emb), Score: 0.9},
	}}
	embedder := &stubEmbedder{dims: 4}
	r := NewMMRRetriever(base, embedder)

	results, err := r.Retrieve(context.Background(), "query", 1, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestMMRRetrieverPropagatesEmbedError(t *testing.T) {
	base := &fakeRetriever{results: []entities.RetrievalResult{
		{Chunk: entities.Chunk{ID: "a", Content: "x"}, Score: 0.9},
	}}
	embedder := &stubEmbedder{dims: 4, err: assert.AnError}
	r := NewMMRRetriever(base, embedder)

	_, err := r.Retrieve(context.Background(), "query", 1, filter.Filter{})
	assert.Error(t, err)
}

func TestWithCandidateMultiplierFloorsAtTwo(t *testing.T) {
	base := &fakeRetriever{}
	embedder := &stubEmbedder{dims: 4}
	r := NewMMRRetriever(base, embedder, WithCandidateMultiplier(0))
	assert.Equal(t, 2, r.candidateMultiplier)
}

// fixedVectorEmbedder always embeds to the same vector, letting a test
// pin the query embedding exactly.
type fixedVectorEmbedder struct {
	vec []float32
}

func (e *fixedVectorEmbedder) Name() string             { return "fixed" }
func (e *fixedVectorEmbedder) Dimensions() int          { return len(e.vec) }
func (e *fixedVectorEmbedder) MaxTokensPerRequest() int { return 8192 }
func (e *fixedVectorEmbedder) OptimalBatchSize() int    { return 16 }

func (e *fixedVectorEmbedder) Embed(ctx context.Context, text string) (entities.Embedding, error) {
	return entities.Embedding{Vector: e.vec, Model: "fixed"}, nil
}

func (e *fixedVectorEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]entities.Embedding, error) {
	out := make([]entities.Embedding, len(texts))
	for i := range texts {
		out[i] = entities.Embedding{Vector: e.vec, Model: "fixed"}
	}
	return out, nil
}

// TestMMRRetrieverBreaksExactTiesByIndexNotMapOrder reproduces the
// scenario where the second pick's mmrScore ties exactly between two
// remaining candidates. The winner must be stable across repeated
// runs rather than depend on Go's randomized map iteration order.
func TestMMRRetrieverBreaksExactTiesByIndexNotMapOrder(t *testing.T) {
	first := entities.Chunk{ID: "first", Content: "first"}.WithEmbedding(entities.Embedding{Vector: []float32{1, 0, 0}, Model: "fixed"})
	second := entities.Chunk{ID: "second", Content: "second"}.WithEmbedding(entities.Embedding{Vector: []float32{0.99, 0.01, 0}, Model: "fixed"})
	third := entities.Chunk{ID: "third", Content: "third"}.WithEmbedding(entities.Embedding{Vector: []float32{0, 1, 0}, Model: "fixed"})

	base := &fakeRetriever{results: []entities.RetrievalResult{
		{Chunk: first, Score: 0.9},
		{Chunk: second, Score: 0.8},
		{Chunk: third, Score: 0.7},
	}}
	embedder := &fixedVectorEmbedder{vec: []float32{1, 0, 0}}
	r := NewMMRRetriever(base, embedder, WithLambda(0.5), WithCandidateMultiplier(2))

	for i := 0; i < 20; i++ {
		results, err := r.Retrieve(context.Background(), "query", 2, filter.Filter{})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Chunk.ID)
		assert.Equal(t, "second", results[1].Chunk.ID, "exact mmrScore tie must break by lowest candidate index")
	}
}
