package retriever

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
	"github.com/Aman-CERP/ragkit/store"
)

// VectorRetriever embeds the query, searches a VectorStore, and
// optionally drops results below a minimum similarity.
type VectorRetriever struct {
	embedder  provider.EmbeddingProvider
	store     store.VectorStore
	threshold *float64
}

// VectorOption configures a VectorRetriever.
type VectorOption func(*VectorRetriever)

// WithSimilarityThreshold drops results scoring below min.
func WithSimilarityThreshold(min float64) VectorOption {
	return func(r *VectorRetriever) { r.threshold = &min }
}

// NewVectorRetriever constructs a VectorRetriever over store using
// embedder to embed queries.
func NewVectorRetriever(embedder provider.EmbeddingProvider, s store.VectorStore, opts ...VectorOption) *VectorRetriever {
	r := &VectorRetriever{embedder: embedder, store: s}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*VectorRetriever)(nil)

// Retrieve embeds query and searches the store, filtering results
// below the configured similarity threshold, if any.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindEmbeddingFailed, "embed query", err)
	}

	results, err := r.store.Search(ctx, emb, limit, f)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "vector search", err)
	}

	if r.threshold == nil {
		return results, nil
	}

	filtered := make([]entities.RetrievalResult, 0, len(results))
	for _, res := range results {
		if res.Score >= *r.threshold {
			filtered = append(filtered, res)
		}
	}
	return filtered, nil
}
