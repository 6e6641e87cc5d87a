package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/provider"
)

// fixedChunker splits content into naive fixed-size word groups, or
// returns a configured error.
type fixedChunker struct {
	size int
	err  error
}

func (c *fixedChunker) Chunk(doc entities.Document) ([]entities.Chunk, error) {
	if c.err != nil {
		return nil, c.err
	}
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil, nil
	}
	size := c.size
	if size <= 0 {
		size = 3
	}
	var chunks []entities.Chunk
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, entities.Chunk{
			ID:      fmt.Sprintf("%s-%d", doc.ID, len(chunks)),
			Content: strings.Join(words[i:end], " "),
			Metadata: entities.ChunkMetadata{
				DocumentID: doc.ID,
				Index:      len(chunks),
			},
		})
	}
	return chunks, nil
}

// stubEmbedder embeds text deterministically, or returns a configured
// error, or fewer embeddings than texts to trigger a count mismatch.
type stubEmbedder struct {
	dims      int
	err       error
	shortenBy int
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

// renamedStubEmbedder embeds identically to stubEmbedder but reports a
// different Name, simulating a swapped embedder provider against a store
// populated by the original one.
type renamedStubEmbedder struct {
	stubEmbedder
}

func (e *renamedStubEmbedder) Name() string { return "stub-v2" }

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]entities.Embedding, error) {
	if e.err != nil {
		return nil, e.err
	}
	n := len(texts)
	if e.shortenBy > 0 {
		n -= e.shortenBy
		if n < 0 {
			n = 0
		}
	}
	out := make([]entities.Embedding, n)
	for i := 0; i < n; i++ {
		emb, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// fakeLoader accepts urls with a fixed suffix and returns a canned
// document (or error) for them.
type fakeLoader struct {
	suffix string
	doc    entities.Document
	err    error
}

func (l *fakeLoader) SupportedExtensions() []string { return []string{l.suffix} }
func (l *fakeLoader) CanLoad(url string) bool        { return strings.HasSuffix(url, l.suffix) }

func (l *fakeLoader) Load(ctx context.Context, url string) (entities.Document, error) {
	if l.err != nil {
		return entities.Document{}, l.err
	}
	return l.doc, nil
}

func (l *fakeLoader) LoadBytes(ctx context.Context, data []byte, metadata entities.DocumentMetadata) (entities.Document, error) {
	return entities.Document{Content: string(data), Metadata: metadata}, nil
}

// routingLoader accepts any path present in docs, keyed by full path.
type routingLoader struct {
	docs map[string]entities.Document
}

func (l *routingLoader) SupportedExtensions() []string { return []string{".txt"} }
func (l *routingLoader) CanLoad(url string) bool {
	_, ok := l.docs[url]
	return ok
}

func (l *routingLoader) Load(ctx context.Context, url string) (entities.Document, error) {
	doc, ok := l.docs[url]
	if !ok {
		return entities.Document{}, fmt.Errorf("no document for %s", url)
	}
	return doc, nil
}

func (l *routingLoader) LoadBytes(ctx context.Context, data []byte, metadata entities.DocumentMetadata) (entities.Document, error) {
	return entities.Document{Content: string(data), Metadata: metadata}, nil
}

// fakeLLM returns a fixed response, or streams fixed chunks, or errors.
type fakeLLM struct {
	response     string
	streamChunks []string
	err          error
	streamErr    error
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
	if l.streamErr != nil {
		return nil, l.streamErr
	}
	ch := make(chan string, len(l.streamChunks))
	for _, c := range l.streamChunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}
