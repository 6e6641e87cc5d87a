// Package store provides the VectorStore contract and its
// implementations: an in-memory store backed by a contiguous-buffer
// batch kernel, a SQLite-persisted store with pluggable memory
// strategies, and an optional HNSW-backed approximate store behind the
// same interface.
package store

import (
	"context"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
)

// VectorStore is the trait every vector backend implements. Every
// chunk id appears at most once; adding a chunk with an existing id
// replaces both the chunk and its embedding; deletion by id is
// silently idempotent.
type VectorStore interface {
	// Add upserts chunks with their embeddings. Dimension is locked on
	// the first successful insert and enforced on every subsequent
	// insert.
	Add(ctx context.Context, chunks []entities.Chunk) error

	// Search returns up to limit results ordered by descending score,
	// restricted to chunks matching filter (an empty filter matches
	// everything).
	Search(ctx context.Context, query entities.Embedding, limit int, f filter.Filter) ([]entities.RetrievalResult, error)

	// Delete removes chunks by id. Unknown ids are silently ignored.
	Delete(ctx context.Context, ids []string) error

	// DeleteByFilter removes every chunk matching f.
	DeleteByFilter(ctx context.Context, f filter.Filter) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the locked embedding dimensionality, or 0 if
	// no chunk has been added yet.
	Dimensions() int

	Close() error
}

// Persistable is implemented by stores that support file-backed
// save/load (the in-memory store; the SQLite store is durable by
// construction and does not need it).
type Persistable interface {
	Save(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
}

// EmbedderCompat is implemented by stores that record which embedder
// model produced their stored vectors, so a changed embedder can be
// detected instead of silently comparing vectors from two different
// models. Returns "" if no chunk has been added yet or the recorded
// model is unknown.
type EmbedderCompat interface {
	EmbedderModel() string
}
