package retriever

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/keyword"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// KeywordRetriever searches a BM25 keyword.Index.
type KeywordRetriever struct {
	index keyword.Index
}

// NewKeywordRetriever constructs a KeywordRetriever over index.
func NewKeywordRetriever(index keyword.Index) *KeywordRetriever {
	return &KeywordRetriever{index: index}
}

var _ Retriever = (*KeywordRetriever)(nil)

// Retrieve runs a BM25 search over the underlying index.
func (r *KeywordRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	results, err := r.index.Search(ctx, query, limit, f)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "keyword search", err)
	}
	return results, nil
}
