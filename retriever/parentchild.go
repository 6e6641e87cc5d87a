package retriever

import (
	"context"
	"strconv"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// AggregationMethod combines multiple child scores into one parent
// score.
type AggregationMethod string

const (
	AggregateMax     AggregationMethod = "max"
	AggregateAverage AggregationMethod = "average"
	AggregateSum     AggregationMethod = "sum"
)

// ParentChildRetriever searches small child chunks but returns their
// larger parent chunks, aggregating child scores per parent.
type ParentChildRetriever struct {
	base        Retriever
	parents     provider.ParentLookup
	aggregation AggregationMethod
}

// ParentChildOption configures a ParentChildRetriever.
type ParentChildOption func(*ParentChildRetriever)

// WithAggregation overrides the default max aggregation.
func WithAggregation(m AggregationMethod) ParentChildOption {
	return func(r *ParentChildRetriever) { r.aggregation = m }
}

// NewParentChildRetriever constructs a ParentChildRetriever over a
// child-embedding base retriever and a ParentLookup collaborator.
func NewParentChildRetriever(base Retriever, parents provider.ParentLookup, opts ...ParentChildOption) *ParentChildRetriever {
	r := &ParentChildRetriever{base: base, parents: parents, aggregation: AggregateMax}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*ParentChildRetriever)(nil)

// Retrieve always enforces isChild==true on the base filter (combined
// with the caller's filter via AND), groups child hits by parentId
// (dropping hits without one), aggregates their scores, and resolves
// each parent via the ParentLookup.
func (r *ParentChildRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	childFilter := filter.And(filter.Field("isChild", filter.OpEquals, entities.BoolValue(true)), f)

	children, err := r.base.Retrieve(ctx, query, limit, childFilter)
	if err != nil {
		return nil, err
	}

	type group struct {
		parentID        string
		scores          []float64
		matchedChildren int
		bestScore       float64
	}
	groups := make(map[string]*group)

	for _, c := range children {
		parentID, ok := stringCustom(c.Chunk.Metadata.Custom, "parentId")
		if !ok || parentID == "" {
			continue
		}
		g, exists := groups[parentID]
		if !exists {
			g = &group{parentID: parentID}
			groups[parentID] = g
		}
		g.scores = append(g.scores, c.Score)
		g.matchedChildren++
		if c.Score > g.bestScore {
			g.bestScore = c.Score
		}
	}

	results := make([]entities.RetrievalResult, 0, len(groups))
	for _, g := range groups {
		parent, found, err := r.parents.Parent(ctx, g.parentID)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "resolve parent chunk", err)
		}
		if !found {
			continue
		}
		results = append(results, entities.RetrievalResult{
			Chunk: parent,
			Score: aggregate(g.scores, r.aggregation),
			Metadata: map[string]string{
				"matchedChildren":   strconv.Itoa(g.matchedChildren),
				"bestChildScore":    strconv.FormatFloat(g.bestScore, 'f', -1, 64),
				"aggregationMethod": string(r.aggregation),
			},
		})
	}

	entities.SortResultsDescending(results)
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func aggregate(scores []float64, method AggregationMethod) float64 {
	if len(scores) == 0 {
		return 0
	}
	switch method {
	case AggregateSum:
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum
	case AggregateAverage:
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	default: // AggregateMax
		max := scores[0]
		for _, s := range scores[1:] {
			if s > max {
				max = s
			}
		}
		return max
	}
}

func stringCustom(m map[string]entities.MetadataValue, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	if !ok {
		return "", false
	}
	return v.String()
}
