package retriever

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankerRetrieverReordersAndTruncates(t *testing.T) {
	base := &fakeRetriever{results: []entities.RetrievalResult{
		resultWith("a", 0.9),
		resultWith("b", 0.8),
		resultWith("c", 0.7),
	}}
	reranker := &fakeReranker{}

	r := NewRerankerRetriever(base, reranker)
	results, err := r.Retrieve(context.Background(), "query", 2, filter.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c", results[0].Chunk.ID)
	assert.Equal(t, "b", results[1].Chunk.ID)
}

func TestRerankerRetrieverNoCandidatesReturnsEmpty(t *testing.T) {
	base := &fakeRetriever{}
	reranker := &fakeReranker{}

	r := NewRerankerRetriever(base, reranker)
	results, err := r.Retrieve(context.Background(), "query", 5, filter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRerankerRetrieverPropagatesError(t *testing.T) {
	base := &fakeRetriever{results: []entities.RetrievalResult{resultWith("a", 0.5)}}
	reranker := &fakeReranker{err: assert.AnError}

	r := NewRerankerRetriever(base, reranker)
	_, err := r.Retrieve(context.Background(), "query", 5, filter.Filter{})
	assert.Error(t, err)
}

func TestWithInitialLimitOverridesCandidatePool(t *testing.T) {
	base := &fakeRetriever{results: []entities.RetrievalResult{
		resultWith("a", 0.9), resultWith("b", 0.8),
	}}
	reranker := &fakeReranker{}

	r := NewRerankerRetriever(base, reranker, WithInitialLimit(1))
	results, err := r.Retrieve(context.Background(), "query", 5, filter.Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
