package retriever

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// HybridRetriever dispatches to a vector and a keyword retriever
// concurrently, then fuses their results with the configured
// FusionStrategy.
type HybridRetriever struct {
	vector       Retriever
	keyword      Retriever
	strategy     FusionStrategy
	vectorWeight float64
}

// HybridOption configures a HybridRetriever.
type HybridOption func(*HybridRetriever)

// WithFusionStrategy overrides the default RRF fusion.
func WithFusionStrategy(s FusionStrategy) HybridOption {
	return func(r *HybridRetriever) { r.strategy = s }
}

// WithVectorWeight sets the vector-list weight (clamped to [0,1]);
// the keyword list receives 1 minus this weight.
func WithVectorWeight(w float64) HybridOption {
	return func(r *HybridRetriever) { r.vectorWeight = clampWeight(w) }
}

// NewHybridRetriever constructs a HybridRetriever over vector and
// keyword sub-retrievers, defaulting to RRF fusion with equal weights.
func NewHybridRetriever(vector, keyword Retriever, opts ...HybridOption) *HybridRetriever {
	r := &HybridRetriever{
		vector:       vector,
		keyword:      keyword,
		strategy:     NewRRFFusion(60),
		vectorWeight: 0.5,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*HybridRetriever)(nil)

// Retrieve fetches 2*limit from each sub-retriever concurrently, then
// fuses and truncates to limit.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	fetchLimit := 2 * limit
	var vectorResults, keywordResults []entities.RetrievalResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.vector.Retrieve(gctx, query, fetchLimit, f)
		if err != nil {
			return err
		}
		vectorResults = res
		return nil
	})
	g.Go(func() error {
		res, err := r.keyword.Retrieve(gctx, query, fetchLimit, f)
		if err != nil {
			return err
		}
		keywordResults = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "hybrid sub-retrieval", err)
	}

	fused := r.strategy.Fuse(vectorResults, keywordResults, r.vectorWeight)
	if limit < len(fused) {
		fused = fused[:limit]
	}
	return fused, nil
}
