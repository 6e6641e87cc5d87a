package retriever

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
)

const defaultMultiQueryTemplate = "Generate {n} alternative phrasings of this search query, one per line, " +
	"with no numbering or extra commentary. Query: {query}"

const maxGeneratedQueryLen = 1000

// MultiQueryRetriever expands the caller's query into several
// reworded variants via an LLMProvider, retrieves for each, and merges
// by chunk id keeping the higher score. The original query is always
// included. If generation fails, it falls back to the original query
// alone.
type MultiQueryRetriever struct {
	base     Retriever
	llm      provider.LLMProvider
	n        int
	template string
}

// MultiQueryOption configures a MultiQueryRetriever.
type MultiQueryOption func(*MultiQueryRetriever)

// WithQueryCount sets how many reworded variants to generate, clamped
// to [1,10].
func WithQueryCount(n int) MultiQueryOption {
	return func(r *MultiQueryRetriever) {
		if n < 1 {
			n = 1
		}
		if n > 10 {
			n = 10
		}
		r.n = n
	}
}

// WithQueryTemplate overrides the generation prompt template. It must
// contain the {query} placeholder; {n} is substituted with the
// requested variant count if present.
func WithQueryTemplate(tmpl string) MultiQueryOption {
	return func(r *MultiQueryRetriever) {
		if strings.TrimSpace(tmpl) != "" {
			r.template = tmpl
		}
	}
}

// NewMultiQueryRetriever constructs a MultiQueryRetriever generating 3
// variants by default.
func NewMultiQueryRetriever(base Retriever, llm provider.LLMProvider, opts ...MultiQueryOption) *MultiQueryRetriever {
	r := &MultiQueryRetriever{base: base, llm: llm, n: 3, template: defaultMultiQueryTemplate}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Retriever = (*MultiQueryRetriever)(nil)

func (r *MultiQueryRetriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	ok, err := validateQuery(query, limit)
	if err != nil || !ok {
		return []entities.RetrievalResult{}, err
	}

	queries := []string{query}
	queries = append(queries, r.generateVariants(ctx, query)...)

	merged := make(map[string]*entities.RetrievalResult)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			results, err := r.base.Retrieve(gctx, q, limit, f)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, res := range results {
				existing, ok := merged[res.Chunk.ID]
				if !ok || res.Score > existing.Score {
					res := res
					merged[res.Chunk.ID] = &res
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "multi-query sub-retrieval", err)
	}

	out := make([]entities.RetrievalResult, 0, len(merged))
	for _, r := range merged {
		out = append(out, *r)
	}
	entities.SortResultsDescending(out)
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// generateVariants asks the LLM for reworded queries. On any failure
// it returns no variants, leaving the original query as the sole
// search term.
func (r *MultiQueryRetriever) generateVariants(ctx context.Context, query string) []string {
	prompt := strings.ReplaceAll(r.template, "{query}", query)
	prompt = strings.ReplaceAll(prompt, "{n}", strconv.Itoa(r.n))

	text, err := r.llm.Generate(ctx, prompt, "", provider.GenerateOptions{})
	if err != nil {
		return nil
	}

	lines := strings.Split(text, "\n")
	variants := make([]string, 0, r.n)
	for _, line := range lines {
		v := sanitizeGeneratedQuery(line)
		if v == "" {
			continue
		}
		variants = append(variants, v)
		if len(variants) >= r.n {
			break
		}
	}
	return variants
}

func sanitizeGeneratedQuery(line string) string {
	var b strings.Builder
	for _, r := range line {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 {
			continue
		}
		b.WriteRune(r)
	}
	v := strings.TrimSpace(b.String())
	if len(v) > maxGeneratedQueryLen {
		v = v[:maxGeneratedQueryLen]
	}
	return v
}
