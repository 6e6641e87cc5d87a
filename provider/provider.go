// Package provider defines the external collaborator contracts the
// engine depends on but does not implement itself: embedding and
// language-model providers, document loaders, chunking strategies,
// a cross-encoder reranker, and a parent-chunk lookup.
package provider

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
)

// EmbeddingProvider turns text into dense vectors.
type EmbeddingProvider interface {
	Name() string
	Dimensions() int
	MaxTokensPerRequest() int
	OptimalBatchSize() int

	Embed(ctx context.Context, text string) (entities.Embedding, error)
	EmbedBatch(ctx context.Context, texts []string) ([]entities.Embedding, error)
}

// GenerateOptions tunes a single LLMProvider call.
type GenerateOptions struct {
	Temperature   *float64
	MaxTokens     *int
	StopSequences []string
}

// LLMProvider generates (or streams) text completions.
type LLMProvider interface {
	Name() string
	Model() string
	MaxContextTokens() int

	Generate(ctx context.Context, prompt, systemPrompt string, opts GenerateOptions) (string, error)

	// Stream sends successive text chunks on the returned channel and
	// closes it when generation completes or ctx is cancelled. A
	// non-nil error is returned only for a failure to start
	// generation; mid-stream failures close the channel early.
	Stream(ctx context.Context, prompt, systemPrompt string, opts GenerateOptions) (<-chan string, error)
}

// ChunkingStrategy splits a document into ordered, offset-addressable
// chunks.
type ChunkingStrategy interface {
	Chunk(document entities.Document) ([]entities.Chunk, error)
}

// DocumentLoader loads a Document from a URL or raw bytes.
type DocumentLoader interface {
	SupportedExtensions() []string
	Load(ctx context.Context, url string) (entities.Document, error)
	LoadBytes(ctx context.Context, data []byte, metadata entities.DocumentMetadata) (entities.Document, error)
	CanLoad(url string) bool
}

// Reranker scores and reorders candidate results against a query
// using a cross-encoder or similar joint relevance model.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []entities.RetrievalResult) ([]entities.RetrievalResult, error)
}

// ParentLookup resolves a parent chunk id to its full chunk, for
// retrievers that search over child embeddings but return parent
// content.
type ParentLookup interface {
	Parent(ctx context.Context, id string) (entities.Chunk, bool, error)
}
