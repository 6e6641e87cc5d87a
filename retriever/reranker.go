package retriever

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// RerankerRetriever fetches a wider candidate pool from a base
// retriever and hands it to an external Reranker, returning the
// reranked order truncated to limit.
type RerankerRetriever struct {
	base         Retriever
	reranker     provider.Reranker
	initialLimit int // 0 means 3*limit
}

// RerankerOption configures a RerankerRetriever.
type RerankerOption func(*RerankerRetriever)

// WithInitialLimit overrides the candidate pool size fetched before
// reranking. Values below 1 fall back to 3*limit at call time.
func WithInitialLimit(n int) RerankerOption {
	return func(r *RerankerRetriever) { r.initialLimit = n }
}

// NewRerankerRetriever constructs a RerankerRetriever, fetching
// 3*limit candidates by default.
func NewRerankerRetriever(base Retriever, reranker provider.Reranker, opts ...RerankerOption) *RerankerRetriever {
	r := &RerankerRetriever{base: base, reranker: reranker}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*RerankerRetriever)(nil)

func (r *RerankerRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	initial := r.initialLimit
	if initial < 1 {
		initial = 3 * limit
	}

	candidates, err := r.base.Retrieve(ctx, query, initial, f)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []entities.RetrievalResult{}, nil
	}

	reranked, err := r.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "rerank candidates", err)
	}

	if limit < len(reranked) {
		reranked = reranked[:limit]
	}
	return reranked, nil
}
