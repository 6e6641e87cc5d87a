package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
	"github.com/Aman-CERP/ragkit/vecmath"
)

// maxPersistedFileBytes bounds Load's input file size (spec 4.4:
// "enforces a maximum file size (100 MB)").
const maxPersistedFileBytes = 100 * 1024 * 1024

// MemoryStore is the map-backed VectorStore. All public methods are
// safe for concurrent use: writes are serialized behind mu, and a
// dirty flag rebuilds the flat-buffer cache lazily on the next
// search, filtered or not.
type MemoryStore struct {
	mu sync.RWMutex

	chunks     map[string]entities.Chunk
	embeddings map[string]entities.Embedding

	expectedDimensions int
	embedderModel      string

	kernel *vecmath.Kernel

	cacheDirty bool
	cacheIDs   []string
	cacheFlat  []float32
}

// NewMemoryStore constructs an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:     make(map[string]entities.Chunk),
		embeddings: make(map[string]entities.Embedding),
		kernel:     vecmath.New(),
		cacheDirty: true,
	}
}

var _ VectorStore = (*MemoryStore)(nil)
var _ Persistable = (*MemoryStore)(nil)
var _ EmbedderCompat = (*MemoryStore)(nil)

// Add upserts chunks. Every chunk must carry a non-nil embedding of
// the store's locked dimensionality (set on the first successful
// insert) whose components are all finite.
func (s *MemoryStore) Add(_ context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.Embedding == nil {
			return ragerr.New(ragerr.KindInsertionFailed, fmt.Sprintf("chunk %q has no embedding", c.ID))
		}
		if !c.Embedding.Valid() {
			return ragerr.New(ragerr.KindInsertionFailed, fmt.Sprintf("chunk %q embedding has non-finite components", c.ID))
		}
		if s.expectedDimensions == 0 {
			s.expectedDimensions = c.Embedding.Dimensions()
		} else if c.Embedding.Dimensions() != s.expectedDimensions {
			return ragerr.Wrap(ragerr.KindInsertionFailed, "dimension mismatch on add",
				dimensionMismatch(s.expectedDimensions, c.Embedding.Dimensions()))
		}

		if s.embedderModel == "" {
			s.embedderModel = c.Embedding.Model
		} else if c.Embedding.Model != "" && c.Embedding.Model != s.embedderModel {
			return ragerr.New(ragerr.KindEmbeddingModelMismatch,
				fmt.Sprintf("chunk %q embedded with model %q, store expects %q", c.ID, c.Embedding.Model, s.embedderModel))
		}
	}

	for _, c := range chunks {
		s.chunks[c.ID] = c
		s.embeddings[c.ID] = *c.Embedding
	}
	s.cacheDirty = true
	return nil
}

func dimensionMismatch(expected, got int) error {
	return fmt.Errorf("expected %d dimensions, got %d", expected, got)
}

// Search returns up to limit results. When the filter is empty, it
// scores against the cached flat buffer via the batch kernel; a
// non-empty filter falls back to per-candidate iteration, since the
// cache only holds the unfiltered set.
func (s *MemoryStore) Search(_ context.Context, query entities.Embedding, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	if limit < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}

	s.mu.Lock()
	if s.cacheDirty {
		s.rebuildCacheLocked()
	}
	ids := s.cacheIDs
	flat := s.cacheFlat
	dims := s.expectedDimensions
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.IsEmpty() {
		if dims == 0 || len(ids) == 0 {
			return []entities.RetrievalResult{}, nil
		}
		scores := s.kernel.BatchCosine(query.Vector, flat, dims)
		results := make([]entities.RetrievalResult, 0, len(ids))
		for i, id := range ids {
			results = append(results, entities.RetrievalResult{
				Chunk: s.chunks[id],
				Score: float64(scores[i]),
			})
		}
		return topK(results, limit), nil
	}

	results := make([]entities.RetrievalResult, 0, limit*2)
	for id, chunk := range s.chunks {
		if !f.Match(chunk.Metadata) {
			continue
		}
		emb := s.embeddings[id]
		score := entities.CosineSimilarity(query, emb)
		results = append(results, entities.RetrievalResult{Chunk: chunk, Score: float64(score)})
	}
	return topK(results, limit), nil
}

// topK sorts descending by score (ties broken by chunk id) and
// truncates to limit.
func topK(results []entities.RetrievalResult, limit int) []entities.RetrievalResult {
	entities.SortResultsDescending(results)
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

// rebuildCacheLocked rebuilds the flat buffer from the current chunk
// set. Caller must hold mu for writing.
func (s *MemoryStore) rebuildCacheLocked() {
	ids := make([]string, 0, len(s.embeddings))
	for id := range s.embeddings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dims := s.expectedDimensions
	flat := make([]float32, 0, len(ids)*dims)
	for _, id := range ids {
		flat = append(flat, s.embeddings[id].Vector...)
	}

	s.cacheIDs = ids
	s.cacheFlat = flat
	s.cacheDirty = false
}

// Delete removes chunks by id. Idempotent: unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.chunks, id)
		delete(s.embeddings, id)
	}
	s.cacheDirty = true
	return nil
}

// DeleteByFilter removes every chunk matching f.
func (s *MemoryStore) DeleteByFilter(_ context.Context, f filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, chunk := range s.chunks {
		if f.Match(chunk.Metadata) {
			delete(s.chunks, id)
			delete(s.embeddings, id)
		}
	}
	s.cacheDirty = true
	return nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// IsEmpty reports whether the store holds no chunks.
func (s *MemoryStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks) == 0
}

// Dimensions returns the locked embedding dimensionality, 0 if empty.
func (s *MemoryStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expectedDimensions
}

// EmbedderModel returns the model name recorded from the first chunk
// added (or loaded), or "" if unset. Implements store.EmbedderCompat.
func (s *MemoryStore) EmbedderModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedderModel
}

// Close releases the store's compute kernel resources.
func (s *MemoryStore) Close() error {
	return s.kernel.Close()
}

// persistedEnvelope is the JSON-on-disk shape: { chunks: [...],
// embeddings: { id: Embedding }, embedderModel: "..." }.
type persistedEnvelope struct {
	Chunks        []entities.Chunk              `json:"chunks"`
	Embeddings    map[string]entities.Embedding `json:"embeddings"`
	EmbedderModel string                        `json:"embedderModel,omitempty"`
}

// Save writes the store to path as a pretty-printed JSON envelope with
// sorted keys, guarded by an advisory file lock so a concurrent saver
// in another process cannot interleave writes.
func (s *MemoryStore) Save(_ context.Context, path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "acquire save lock", err)
	}
	defer lock.Unlock()

	s.mu.RLock()
	envelope := persistedEnvelope{
		Chunks:        make([]entities.Chunk, 0, len(s.chunks)),
		Embeddings:    make(map[string]entities.Embedding, len(s.embeddings)),
		EmbedderModel: s.embedderModel,
	}
	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		envelope.Chunks = append(envelope.Chunks, s.chunks[id])
		envelope.Embeddings[id] = s.embeddings[id]
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "marshal store envelope", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ragerr.Wrap(ragerr.KindInsertionFailed, "create store directory", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "write store file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "rename store file", err)
	}
	return nil
}

// Load reads a store envelope from path. On any validation failure it
// leaves the receiver's state unchanged.
func (s *MemoryStore) Load(_ context.Context, path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "acquire load lock", err)
	}
	defer lock.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "stat store file", err)
	}
	if info.Size() > maxPersistedFileBytes {
		return ragerr.New(ragerr.KindInsertionFailed, fmt.Sprintf("store file exceeds %d byte limit", maxPersistedFileBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "read store file", err)
	}

	var envelope persistedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ragerr.Wrap(ragerr.KindInvalidData, "decode store envelope", err)
	}

	chunks := make(map[string]entities.Chunk, len(envelope.Chunks))
	for _, c := range envelope.Chunks {
		chunks[c.ID] = c
	}
	for id := range chunks {
		if _, ok := envelope.Embeddings[id]; !ok {
			return ragerr.New(ragerr.KindInvalidData, fmt.Sprintf("chunk %q has no embedding in envelope", id))
		}
	}
	for id := range envelope.Embeddings {
		if _, ok := chunks[id]; !ok {
			return ragerr.New(ragerr.KindInvalidData, fmt.Sprintf("embedding %q has no chunk in envelope", id))
		}
	}

	dims := 0
	for _, e := range envelope.Embeddings {
		dims = e.Dimensions()
		break
	}
	for _, e := range envelope.Embeddings {
		if e.Dimensions() != dims {
			return ragerr.New(ragerr.KindEmbeddingDimensionMismatch, "inconsistent embedding dimensions in envelope")
		}
	}

	model := envelope.EmbedderModel
	if model == "" {
		for _, e := range envelope.Embeddings {
			model = e.Model
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedderModel != "" && model != "" && model != s.embedderModel {
		return ragerr.New(ragerr.KindEmbeddingModelMismatch,
			fmt.Sprintf("store expects embedder %q, loaded file was produced by %q", s.embedderModel, model))
	}
	s.chunks = chunks
	s.embeddings = envelope.Embeddings
	s.expectedDimensions = dims
	s.embedderModel = model
	s.cacheDirty = true
	return nil
}
