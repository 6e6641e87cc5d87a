package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

const (
	tokenizerName = "ragkit_code_tokenizer"
	stopFilterName = "ragkit_code_stop"
	analyzerName   = "ragkit_code_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(tokenizerName, tokenizerConstructor)
	_ = registry.RegisterTokenFilter(stopFilterName, stopFilterConstructor)
}

// BleveIndex is an alternate Index backend delegating scoring to
// bleve's own ranker instead of the exact BM25 formula MemoryIndex
// computes. The index lives in memory only; nothing is persisted to
// disk.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	chunks map[string]entities.Chunk
	closed bool
}

type bleveDoc struct {
	Content string `json:"content"`
}

// NewBleveIndex creates an in-memory bleve-backed index. It takes no
// path and never writes to disk; bleve's on-disk persistence is not
// used.
func NewBleveIndex() (*BleveIndex, error) {
	mapping, err := newIndexMapping()
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindInvalidConfiguration, "build bleve mapping", err)
	}
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindInvalidConfiguration, "create bleve index", err)
	}
	return &BleveIndex{index: idx, chunks: make(map[string]entities.Chunk)}, nil
}

var _ Index = (*BleveIndex)(nil)

func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": tokenizerName,
		"token_filters": []string{
			lowercase.Name,
			stopFilterName,
		},
	})
	if err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = analyzerName
	return im, nil
}

// Add indexes chunks, keyed by chunk ID.
func (b *BleveIndex) Add(_ context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "index is closed")
	}

	batch := b.index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID, bleveDoc{Content: c.Content}); err != nil {
			return ragerr.Wrap(ragerr.KindInsertionFailed, fmt.Sprintf("index chunk %q", c.ID), err)
		}
		b.chunks[c.ID] = c
	}
	if err := b.index.Batch(batch); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "execute batch", err)
	}
	return nil
}

// Search runs a bleve match query and post-filters hits by f, since
// bleve has no native knowledge of the engine's metadata filter
// algebra. Because filtering happens after bleve has already chosen
// its top hits, a restrictive filter can return fewer than limit
// results even when more would match.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	if limit < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}
	if strings.TrimSpace(query) == "" {
		return []entities.RetrievalResult{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ragerr.New(ragerr.KindVectorStoreUnavailable, "index is closed")
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	fetch := limit
	if !f.IsEmpty() {
		fetch = limit * 8
	}
	req.Size = fetch

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "bleve search", err)
	}

	results := make([]entities.RetrievalResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		chunk, ok := b.chunks[hit.ID]
		if !ok || !f.Match(chunk.Metadata) {
			continue
		}
		results = append(results, entities.RetrievalResult{Chunk: chunk, Score: hit.Score})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Delete removes chunks by id.
func (b *BleveIndex) Delete(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ragerr.New(ragerr.KindVectorStoreUnavailable, "index is closed")
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
		delete(b.chunks, id)
	}
	if err := b.index.Batch(batch); err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "delete batch", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (b *BleveIndex) Count(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks), nil
}

// Close releases the underlying bleve index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

func tokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

type codeTokenizer struct{}

func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := Tokenize(text, 2)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}

func stopFilterConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.TokenFilter, error) {
	return &codeStopFilter{stopWords: BuildStopWordSet(DefaultStopWords)}, nil
}

type codeStopFilter struct {
	stopWords map[string]struct{}
}

func (f *codeStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		if _, isStop := f.stopWords[strings.ToLower(string(token.Term))]; !isStop {
			result = append(result, token)
		}
	}
	return result
}
