package retriever

import (
	"context"
	"sync"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
)

// fakeRetriever returns a fixed, pre-scored result list regardless of
// query, modulo the limit. Safe for concurrent Retrieve calls since
// both HybridRetriever and MultiQueryRetriever dispatch to their
// sub-retrievers in parallel.
type fakeRetriever struct {
	results []entities.RetrievalResult
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int, filt filter.Filter) ([]entities.RetrievalResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.RetrievalResult, 0, len(f.results))
	for _, r := range f.results {
		if filt.Match(r.Chunk.Metadata) {
			out = append(out, r)
		}
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// stubEmbedder embeds text deterministically by hashing it into a
// fixed-size vector, so cosine similarity is stable across calls.
type stubEmbedder struct {
	dims int
	err  error
}

func (e *stubEmbedder) Name() string             { return "stub" }
func (e *stubEmbedder) Dimensions() int          { return e.dims }
func (e *stubEmbedder) MaxTokensPerRequest() int { return 8192 }
func (e *stubEmbedder) OptimalBatchSize() int    { return 16 }

func (e *stubEmbedder) Embed(ctx context.Context, text string) (entities.Embedding, error) {
	if e.err != nil {
		return entities.Embedding{}, e.err
	}
	v := make([]float32, e.dims)
	for i, r := range text {
		v[i%e.dims] += float32(r % 31)
	}
	return entities.Embedding{Vector: v, Model: "stub"}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]entities.Embedding, error) {
	out := make([]entities.Embedding, len(texts))
	for i, t := range texts {
		emb, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// fakeLLM returns a fixed line-separated variants string, or an error.
type fakeLLM struct {
	response string
	err      error
}

func (l *fakeLLM) Name() string          { return "fake" }
func (l *fakeLLM) Model() string         { return "fake-model" }
func (l *fakeLLM) MaxContextTokens() int { return 4096 }

func (l *fakeLLM) Generate(ctx context.Context, prompt, systemPrompt string, opts provider.GenerateOptions) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.response, nil
}

func (l *fakeLLM) Stream(ctx context.Context, prompt, systemPrompt string, opts provider.GenerateOptions) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

// fakeParentLookup resolves parent ids from an in-memory map.
type fakeParentLookup struct {
	parents map[string]entities.Chunk
}

func (p *fakeParentLookup) Parent(ctx context.Context, id string) (entities.Chunk, bool, error) {
	c, ok := p.parents[id]
	return c, ok, nil
}

// fakeReranker reverses the input order, simulating a reranker that
// disagrees with the base retriever's ranking.
type fakeReranker struct {
	err error
}

func (r *fakeReranker) Rerank(ctx context.Context, query string, results []entities.RetrievalResult) ([]entities.RetrievalResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entities.RetrievalResult, len(results))
	for i, res := range results {
		out[len(results)-1-i] = res
	}
	return out, nil
}

func chunkWithParent(id, content, parentID string) entities.Chunk {
	return entities.Chunk{
		ID:      id,
		Content: content,
		Metadata: entities.ChunkMetadata{
			Custom: map[string]entities.MetadataValue{
				"isChild":  entities.BoolValue(true),
				"parentId": entities.StringValue(parentID),
			},
		},
	}
}

func resultWith(id string, score float64) entities.RetrievalResult {
	return entities.RetrievalResult{Chunk: entities.Chunk{ID: id}, Score: score}
}
