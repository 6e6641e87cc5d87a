package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// HNSWVectorStore is an optional approximate-nearest-neighbor
// VectorStore, wired behind the same interface as the exact stores so
// a caller can trade recall for speed at large scale without changing
// anything above the store layer. The engine's default stores remain
// brute-force; this exists for callers who opt into ANN explicitly.
type HNSWVectorStore struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	dims  int

	chunks  map[string]entities.Chunk
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64

	closed bool
}

type hnswPersistedMetadata struct {
	IDMap   map[string]uint64
	NextKey uint64
	Dims    int
	Chunks  map[string]entities.Chunk
}

// NewHNSWVectorStore constructs an empty ANN-backed store for
// embeddings of the given dimensionality, ranked by cosine similarity.
func NewHNSWVectorStore(dims int) (*HNSWVectorStore, error) {
	if dims < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "dimensions must be >= 1")
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &HNSWVectorStore{
		graph:  graph,
		dims:   dims,
		chunks: make(map[string]entities.Chunk),
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}, nil
}

var _ VectorStore = (*HNSWVectorStore)(nil)

// Add inserts chunks, replacing any existing chunk of the same id via
// lazy deletion: the old graph node is orphaned rather than removed,
// since coder/hnsw's delete path is unstable when it empties the graph.
func (s *HNSWVectorStore) Add(_ context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}

	for _, c := range chunks {
		if c.Embedding == nil || !c.Embedding.Valid() {
			return ragerr.New(ragerr.KindInsertionFailed, fmt.Sprintf("chunk %q missing a valid embedding", c.ID))
		}
		if c.Embedding.Dimensions() != s.dims {
			return ragerr.New(ragerr.KindInsertionFailed,
				fmt.Sprintf("expected %d dimensions, got %d", s.dims, c.Embedding.Dimensions()))
		}
	}

	for _, c := range chunks {
		if existingKey, exists := s.idMap[c.ID]; exists {
			delete(s.keyMap, existingKey)
			delete(s.idMap, c.ID)
		}

		key := s.nextKey
		s.nextKey++

		vec := make([]float32, len(c.Embedding.Vector))
		copy(vec, c.Embedding.Vector)
		normalizeVectorInPlace(vec)

		s.graph.Add(hnsw.MakeNode(key, vec))
		s.idMap[c.ID] = key
		s.keyMap[key] = c.ID
		s.chunks[c.ID] = c
	}

	return nil
}

// Search returns up to limit approximate nearest neighbors. filter is
// applied by post-filtering the candidate set the graph returns,
// over-fetching to compensate, since coder/hnsw has no native
// predicate support.
func (s *HNSWVectorStore) Search(_ context.Context, query entities.Embedding, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	if limit < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}
	if query.Dimensions() != s.dims {
		return nil, ragerr.New(ragerr.KindEmbeddingDimensionMismatch,
			fmt.Sprintf("expected %d dimensions, got %d", s.dims, query.Dimensions()))
	}
	if s.graph.Len() == 0 {
		return []entities.RetrievalResult{}, nil
	}

	fetch := limit
	if !f.IsEmpty() {
		fetch = limit * 8
		if fetch > len(s.idMap) {
			fetch = len(s.idMap)
		}
		if fetch < limit {
			fetch = limit
		}
	}

	normalizedQuery := make([]float32, len(query.Vector))
	copy(normalizedQuery, query.Vector)
	normalizeVectorInPlace(normalizedQuery)

	nodes := s.graph.Search(normalizedQuery, fetch)

	results := make([]entities.RetrievalResult, 0, len(nodes))
	for _, node := range nodes {
		id, ok := s.keyMap[node.Key]
		if !ok {
			continue // orphaned (lazily deleted) node
		}
		chunk, ok := s.chunks[id]
		if !ok {
			continue
		}
		if !f.Match(chunk.Metadata) {
			continue
		}
		distance := s.graph.Distance(normalizedQuery, node.Value)
		results = append(results, entities.RetrievalResult{
			Chunk: chunk,
			Score: float64(distanceToScore(distance)),
		})
		if len(results) >= limit {
			break
		}
	}

	entities.SortResultsDescending(results)
	return results, nil
}

// Delete lazily removes chunks by id, orphaning their graph nodes.
func (s *HNSWVectorStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}

	for _, id := range ids {
		if key, exists := s.idMap[id]; exists {
			delete(s.keyMap, key)
			delete(s.idMap, id)
			delete(s.chunks, id)
		}
	}
	return nil
}

// DeleteByFilter lazily removes every chunk matching f.
func (s *HNSWVectorStore) DeleteByFilter(_ context.Context, f filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}

	for id, chunk := range s.chunks {
		if f.Match(chunk.Metadata) {
			if key, exists := s.idMap[id]; exists {
				delete(s.keyMap, key)
				delete(s.idMap, id)
			}
			delete(s.chunks, id)
		}
	}
	return nil
}

// Count returns the number of live (non-orphaned) chunks.
func (s *HNSWVectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, nil
	}
	return len(s.idMap), nil
}

// Dimensions returns the store's configured dimensionality.
func (s *HNSWVectorStore) Dimensions() int { return s.dims }

// Stats reports graph size versus live chunk count, the gap being
// orphaned nodes left behind by lazy deletion.
type HNSWStats struct {
	ValidIDs   int
	GraphNodes int
	Orphans    int
}

// Stats returns orphan bookkeeping useful for deciding when to rebuild
// the graph from the live chunk set.
func (s *HNSWVectorStore) Stats() HNSWStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return HNSWStats{}
	}
	valid := len(s.idMap)
	nodes := s.graph.Len()
	return HNSWStats{ValidIDs: valid, GraphNodes: nodes, Orphans: nodes - valid}
}

// Save persists the graph and its id mappings to path (+".meta"),
// using a temp-file-and-rename for each to avoid a half-written file
// on crash.
func (s *HNSWVectorStore) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ragerr.Wrap(ragerr.KindInsertionFailed, "create index directory", err)
		}
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "create index file", err)
	}
	if err := s.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "export graph", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "close index file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "rename index file", err)
	}

	return s.saveMetadata(path + ".meta")
}

func (s *HNSWVectorStore) saveMetadata(path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "create metadata file", err)
	}

	meta := hnswPersistedMetadata{IDMap: s.idMap, NextKey: s.nextKey, Dims: s.dims, Chunks: s.chunks}
	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		file.Close()
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "encode metadata", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "close metadata file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ragerr.Wrap(ragerr.KindInsertionFailed, "rename metadata file", err)
	}
	return nil
}

// Load restores the graph and id mappings from path. On failure the
// receiver's prior state is left in whatever partial condition the
// load reached; callers that need atomicity should Load into a fresh
// store and swap it in.
func (s *HNSWVectorStore) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "store is closed")
	}

	if err := s.loadMetadata(path + ".meta"); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "load metadata", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "open index file", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	if err := s.graph.Import(reader); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "import graph", err)
	}
	return nil
}

func (s *HNSWVectorStore) loadMetadata(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var meta hnswPersistedMetadata
	if err := gob.NewDecoder(file).Decode(&meta); err != nil {
		return err
	}

	s.idMap = meta.IDMap
	s.dims = meta.Dims
	s.chunks = meta.Chunks
	s.nextKey = meta.NextKey
	s.keyMap = make(map[uint64]string, len(meta.IDMap))
	for id, key := range s.idMap {
		s.keyMap[key] = id
	}
	return nil
}

// Close releases the store. The graph is dropped; coder/hnsw needs no
// explicit teardown.
func (s *HNSWVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.graph = nil
	return nil
}

func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}

// distanceToScore converts cosine distance (0..2) to a similarity
// score in (roughly) [0, 1].
func distanceToScore(distance float32) float32 {
	return 1.0 - distance/2.0
}
