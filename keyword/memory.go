package keyword

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// MemoryIndex is the default BM25 implementation: an inverted index
// plus per-chunk term frequencies, computing the closed-form BM25
// score directly rather than delegating to a third-party ranker.
type MemoryIndex struct {
	mu sync.RWMutex

	cfg       Config
	stopWords map[string]struct{}

	chunks     map[string]entities.Chunk
	termFreqs  map[string]map[string]int // chunkID -> term -> tf
	docFreqs   map[string]int            // term -> number of chunks containing it
	chunkLens  map[string]int            // chunkID -> token count
	totalLen   int
}

// NewMemoryIndex constructs an empty BM25 index with cfg. K1 must be
// > 0 and B must be in [0,1].
func NewMemoryIndex(cfg Config) (*MemoryIndex, error) {
	if cfg.K1 <= 0 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "k1 must be > 0")
	}
	if cfg.B < 0 || cfg.B > 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "b must be in [0,1]")
	}
	if cfg.MinTokenLength < 1 {
		cfg.MinTokenLength = 2
	}

	return &MemoryIndex{
		cfg:       cfg,
		stopWords: BuildStopWordSet(cfg.StopWords),
		chunks:    make(map[string]entities.Chunk),
		termFreqs: make(map[string]map[string]int),
		docFreqs:  make(map[string]int),
		chunkLens: make(map[string]int),
	}, nil
}

var _ Index = (*MemoryIndex)(nil)

func (idx *MemoryIndex) tokenize(text string) []string {
	tokens := Tokenize(text, idx.cfg.MinTokenLength)
	return FilterStopWords(tokens, idx.stopWords)
}

// Add indexes chunks, removing any prior contribution of an existing
// chunk ID before re-indexing it under its new content.
func (idx *MemoryIndex) Add(_ context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, c := range chunks {
		idx.removeLocked(c.ID)
		idx.addOneLocked(c)
	}
	return nil
}

func (idx *MemoryIndex) addOneLocked(c entities.Chunk) {
	tokens := idx.tokenize(c.Content)

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	idx.chunks[c.ID] = c
	idx.termFreqs[c.ID] = tf
	idx.chunkLens[c.ID] = len(tokens)
	idx.totalLen += len(tokens)

	for term := range tf {
		idx.docFreqs[term]++
	}
}

// removeLocked removes a chunk's contribution, if present. Document
// frequencies are decremented per distinct term the chunk held and
// are never allowed to go negative.
func (idx *MemoryIndex) removeLocked(id string) {
	tf, ok := idx.termFreqs[id]
	if !ok {
		return
	}
	for term := range tf {
		if idx.docFreqs[term] > 0 {
			idx.docFreqs[term]--
		}
		if idx.docFreqs[term] == 0 {
			delete(idx.docFreqs, term)
		}
	}
	idx.totalLen -= idx.chunkLens[id]
	delete(idx.termFreqs, id)
	delete(idx.chunkLens, id)
	delete(idx.chunks, id)
}

// Delete removes chunks by id. Unknown ids are silently ignored.
func (idx *MemoryIndex) Delete(_ context.Context, ids []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		idx.removeLocked(id)
	}
	return nil
}

// Search tokenizes query and scores every chunk matching f by the
// standard BM25 accumulation, returning the top-limit results.
func (idx *MemoryIndex) Search(_ context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	if limit < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}
	if strings.TrimSpace(query) == "" {
		return []entities.RetrievalResult{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.chunks)
	if n == 0 {
		return []entities.RetrievalResult{}, nil
	}

	terms := idx.tokenize(query)
	if len(terms) == 0 {
		return []entities.RetrievalResult{}, nil
	}

	avgLen := float64(idx.totalLen) / float64(n)
	scores := make(map[string]float64)

	for _, term := range terms {
		df := idx.docFreqs[term]
		if df == 0 {
			continue
		}
		idf := math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)

		for chunkID, tf := range idx.termFreqs {
			count := tf[term]
			if count == 0 {
				continue
			}
			chunk := idx.chunks[chunkID]
			if !f.Match(chunk.Metadata) {
				continue
			}
			length := float64(idx.chunkLens[chunkID])
			num := float64(count) * (idx.cfg.K1 + 1)
			den := float64(count) + idx.cfg.K1*(1-idx.cfg.B+idx.cfg.B*length/avgLen)
			scores[chunkID] += idf * (num / den)
		}
	}

	results := make([]entities.RetrievalResult, 0, len(scores))
	for chunkID, score := range scores {
		results = append(results, entities.RetrievalResult{Chunk: idx.chunks[chunkID], Score: score})
	}
	entities.SortResultsDescending(results)
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (idx *MemoryIndex) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks), nil
}

// Close is a no-op; the index holds no external resources.
func (idx *MemoryIndex) Close() error { return nil }
