package retriever

import (
	"math"

	"github.com/Aman-CERP/ragkit/entities"
)

// FusionStrategy combines a vector result list and a keyword result
// list into a single ranked list.
type FusionStrategy interface {
	Fuse(vector, keyword []entities.RetrievalResult, vectorWeight float64) []entities.RetrievalResult
}

// RRFFusion is Reciprocal Rank Fusion: score(id) = Σ weight/(k+rank),
// summed over whichever of the two lists the id appears in.
type RRFFusion struct {
	K int // smoothing constant, >= 1, default 60
}

// NewRRFFusion constructs an RRFFusion with the spec default k=60. A
// non-positive k is replaced by the default.
func NewRRFFusion(k int) RRFFusion {
	if k < 1 {
		k = 60
	}
	return RRFFusion{K: k}
}

func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

func (f RRFFusion) Fuse(vector, kw []entities.RetrievalResult, vectorWeight float64) []entities.RetrievalResult {
	vectorWeight = clampWeight(vectorWeight)
	keywordWeight := 1 - vectorWeight

	scores := make(map[string]*scored)

	for rank, r := range vector {
		a, ok := scores[r.Chunk.ID]
		if !ok {
			a = &scored{chunk: r.Chunk}
			scores[r.Chunk.ID] = a
		}
		a.score += vectorWeight / float64(f.K+rank+1)
	}
	for rank, r := range kw {
		a, ok := scores[r.Chunk.ID]
		if !ok {
			a = &scored{chunk: r.Chunk}
			scores[r.Chunk.ID] = a
		}
		a.score += keywordWeight / float64(f.K+rank+1)
	}

	return toResults(scores)
}

// WeightedSumFusion min-max-normalizes each list to [0,1] (collapsing
// to 1.0 when every score in a list is equal), then combines by
// weighted sum.
type WeightedSumFusion struct{}

func (WeightedSumFusion) Fuse(vector, kw []entities.RetrievalResult, vectorWeight float64) []entities.RetrievalResult {
	vectorWeight = clampWeight(vectorWeight)
	keywordWeight := 1 - vectorWeight

	vNorm := minMaxNormalize(vector)
	kNorm := minMaxNormalize(kw)

	scores := make(map[string]*scored)
	for id, s := range vNorm {
		scores[id] = &scored{chunk: s.chunk, score: s.score * vectorWeight}
	}
	for id, s := range kNorm {
		if a, ok := scores[id]; ok {
			a.score += s.score * keywordWeight
		} else {
			scores[id] = &scored{chunk: s.chunk, score: s.score * keywordWeight}
		}
	}
	return toResults(scores)
}

// ZScoreFusion per-list z-normalizes (skipping normalization when a
// list's stddev is 0), then combines by weighted sum.
type ZScoreFusion struct{}

func (ZScoreFusion) Fuse(vector, kw []entities.RetrievalResult, vectorWeight float64) []entities.RetrievalResult {
	vectorWeight = clampWeight(vectorWeight)
	keywordWeight := 1 - vectorWeight

	vNorm := zNormalize(vector)
	kNorm := zNormalize(kw)

	scores := make(map[string]*scored)
	for id, s := range vNorm {
		scores[id] = &scored{chunk: s.chunk, score: s.score * vectorWeight}
	}
	for id, s := range kNorm {
		if a, ok := scores[id]; ok {
			a.score += s.score * keywordWeight
		} else {
			scores[id] = &scored{chunk: s.chunk, score: s.score * keywordWeight}
		}
	}
	return toResults(scores)
}

type scored struct {
	chunk entities.Chunk
	score float64
}

func minMaxNormalize(results []entities.RetrievalResult) map[string]scored {
	out := make(map[string]scored, len(results))
	if len(results) == 0 {
		return out
	}

	min, max := results[0].Score, results[0].Score
	for _, r := range results {
		if r.Score < min {
			min = r.Score
		}
		if r.Score > max {
			max = r.Score
		}
	}

	span := max - min
	for _, r := range results {
		var n float64
		if span == 0 {
			n = 1.0
		} else {
			n = (r.Score - min) / span
		}
		out[r.Chunk.ID] = scored{chunk: r.Chunk, score: n}
	}
	return out
}

func zNormalize(results []entities.RetrievalResult) map[string]scored {
	out := make(map[string]scored, len(results))
	if len(results) == 0 {
		return out
	}

	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	mean := sum / float64(len(results))

	var variance float64
	for _, r := range results {
		d := r.Score - mean
		variance += d * d
	}
	variance /= float64(len(results))
	stddev := math.Sqrt(variance)

	for _, r := range results {
		var n float64
		if stddev == 0 {
			n = r.Score
		} else {
			n = (r.Score - mean) / stddev
		}
		out[r.Chunk.ID] = scored{chunk: r.Chunk, score: n}
	}
	return out
}

func toResults(scores map[string]*scored) []entities.RetrievalResult {
	results := make([]entities.RetrievalResult, 0, len(scores))
	for _, a := range scores {
		results = append(results, entities.RetrievalResult{Chunk: a.chunk, Score: a.score})
	}
	entities.SortResultsDescending(results)
	return results
}
