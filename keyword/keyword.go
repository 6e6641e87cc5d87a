// Package keyword implements BM25 lexical retrieval over chunk text.
// The default backend computes the exact textbook BM25 formula so its
// scores are reproducible and testable; an optional bleve-backed
// implementation (in-memory only) trades that guarantee for bleve's
// own internal scorer.
package keyword

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
)

// Index is the keyword-search contract every backend implements.
type Index interface {
	// Add tokenizes and indexes chunks, keyed by chunk ID. Adding an
	// existing ID first removes its prior contribution to term and
	// length statistics.
	Add(ctx context.Context, chunks []entities.Chunk) error

	// Search tokenizes query, scores indexed chunks matching f, and
	// returns up to limit results ordered by descending score. An
	// empty or whitespace-only query returns no results.
	Search(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error)

	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Config tunes BM25 scoring and tokenization.
type Config struct {
	K1             float64 // term-frequency saturation, > 0, default 1.2
	B              float64 // length normalization, in [0,1], default 0.75
	StopWords      []string
	MinTokenLength int
}

// DefaultConfig returns the spec's default BM25 parameters.
func DefaultConfig() Config {
	return Config{
		K1:             1.2,
		B:              0.75,
		StopWords:      DefaultStopWords,
		MinTokenLength: 2,
	}
}
