package retriever

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// MMRRetriever diversifies a base retriever's candidates by Maximal
// Marginal Relevance: iteratively picking the candidate that
// maximizes relevance to the query minus similarity to what has
// already been selected.
type MMRRetriever struct {
	base                Retriever
	embedder            provider.EmbeddingProvider
	lambda              float64
	candidateMultiplier int
}

// MMROption configures an MMRRetriever.
type MMROption func(*MMRRetriever)

// WithLambda sets the relevance/diversity tradeoff, clamped to [0,1].
func WithLambda(lambda float64) MMROption {
	return func(r *MMRRetriever) {
		if lambda < 0 {
			lambda = 0
		}
		if lambda > 1 {
			lambda = 1
		}
		r.lambda = lambda
	}
}

// WithCandidateMultiplier sets how many candidates (limit*multiplier)
// are fetched from the base retriever before diversification. Values
// below 2 are raised to 2.
func WithCandidateMultiplier(m int) MMROption {
	return func(r *MMRRetriever) {
		if m < 2 {
			m = 2
		}
		r.candidateMultiplier = m
	}
}

// NewMMRRetriever constructs an MMRRetriever with lambda=0.5 and
// candidateMultiplier=3 by default.
func NewMMRRetriever(base Retriever, embedder provider.EmbeddingProvider, opts ...MMROption) *MMRRetriever {
	r := &MMRRetriever{base: base, embedder: embedder, lambda: 0.5, candidateMultiplier: 3}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*MMRRetriever)(nil)

// Retrieve fetches limit*candidateMultiplier candidates from the base
// retriever, then greedily selects limit of them by the MMR score
// λ·sim(q,d) − (1−λ)·max_{s∈S} sim(d,s), starting from an empty
// selection set.
func (r *MMRRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	candidates, err := r.base.Retrieve(ctx, query, limit*r.candidateMultiplier, f)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []entities.RetrievalResult{}, nil
	}

	queryEmb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindEmbeddingFailed, "embed query", err)
	}

	candidateEmbs := make([]entities.Embedding, len(candidates))
	for i, c := range candidates {
		if c.Chunk.Embedding != nil {
			candidateEmbs[i] = *c.Chunk.Embedding
			continue
		}
		emb, err := r.embedder.Embed(ctx, c.Chunk.Content)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.KindEmbeddingFailed, "embed candidate", err)
		}
		candidateEmbs[i] = emb
	}

	relevance := make([]float64, len(candidates))
	for i, emb := range candidateEmbs {
		relevance[i] = float64(entities.CosineSimilarity(queryEmb, emb))
	}

	selected := make([]int, 0, limit)
	selectedScores := make([]float64, 0, limit)
	remaining := make([]int, len(candidates))
	for i := range candidates {
		remaining[i] = i
	}

	for len(selected) < limit && len(remaining) > 0 {
		bestPos := -1
		bestIdx := -1
		bestScore := 0.0
		first := true

		// remaining is kept in ascending index order, so ties in
		// mmrScore are broken deterministically by lowest candidate
		// index rather than by map iteration order.
		for pos, i := range remaining {
			maxSim := 0.0
			for _, j := range selected {
				sim := float64(entities.CosineSimilarity(candidateEmbs[i], candidateEmbs[j]))
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmrScore := r.lambda*relevance[i] - (1-r.lambda)*maxSim
			if first || mmrScore > bestScore {
				bestScore = mmrScore
				bestIdx = i
				bestPos = pos
				first = false
			}
		}

		selected = append(selected, bestIdx)
		selectedScores = append(selectedScores, bestScore)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	results := make([]entities.RetrievalResult, 0, len(selected))
	for k, i := range selected {
		c := candidates[i]
		results = append(results, entities.RetrievalResult{
			Chunk: c.Chunk,
			Score: selectedScores[k],
		})
	}
	return results, nil
}
