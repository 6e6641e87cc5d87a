// Package retriever implements the engine's retrieval strategies:
// plain vector and keyword search, hybrid fusion of the two, MMR
// diversification, parent-child aggregation, multi-query expansion,
// and a reranking decorator. Every strategy implements Retriever.
package retriever

import (
	"context"
	"strings"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// Retriever is the contract every retrieval strategy implements.
// limit must be >= 1; an empty or whitespace-only query returns no
// results without error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error)
}

func validateQuery(query string, limit int) (bool, error) {
	if limit < 1 {
		return false, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}
	if strings.TrimSpace(query) == "" {
		return false, nil
	}
	return true, nil
}
