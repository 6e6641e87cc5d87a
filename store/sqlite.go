package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

var validTableName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Strategy selects how SQLiteStore.Search scans rows. See the
// concrete types below: Eager, Streaming, LRUCached, Hybrid.
type Strategy interface {
	isStrategy()
}

// Eager loads all rows once per search — the default, appropriate
// below ~10k rows.
type Eager struct{}

// Streaming fetches rows in fixed-size batches, maintaining a bounded
// top-K heap, appropriate when row count greatly exceeds working
// memory (recommended above ~100k rows).
type Streaming struct{ BatchSize int }

// LRUCached records the most recently touched embeddings in an LRU
// sized by Capacity when the cache is first created (the cache is
// shared with Hybrid and is not resized afterwards); recommended for
// 10k-100k rows. Every LRUCached search still reads and decodes all
// rows; the cached vectors are only scored from by Hybrid.
type LRUCached struct{ Capacity int }

// Hybrid checks the LRU cache first, then streams the cold tail,
// merging both into a single ranked heap.
type Hybrid struct {
	Capacity  int
	BatchSize int
}

func (Eager) isStrategy()     {}
func (Streaming) isStrategy() {}
func (LRUCached) isStrategy() {}
func (Hybrid) isStrategy()    {}

// RecommendStrategy applies the automatic sizing rule from spec 4.5:
// <10k rows -> Eager, 10k-100k -> Hybrid, >100k -> Streaming.
func RecommendStrategy(rowCount int) Strategy {
	switch {
	case rowCount < 10_000:
		return Eager{}
	case rowCount <= 100_000:
		return Hybrid{Capacity: 5000, BatchSize: 1000}
	default:
		return Streaming{BatchSize: 2000}
	}
}

// SQLiteStore is a durable VectorStore backed by a single SQLite
// table. Search is brute-force (this spec's engine does not implement
// ANN), honoring cooperative cancellation at batch/row granularity.
type SQLiteStore struct {
	mu        sync.Mutex
	db        *sql.DB
	table     string
	dims      int
	defaultSt Strategy
	lru       *lruEmbeddingCache
}

// NewSQLiteStore opens (or creates) a SQLite-backed vector store at
// path using the given table name and embedding dimensionality. An
// empty path opens an in-memory database, useful for tests.
func NewSQLiteStore(path, table string, dims int) (*SQLiteStore, error) {
	if !validTableName.MatchString(table) {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, fmt.Sprintf("invalid table name %q", table))
	}
	if dims < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "dimensions must be >= 1")
	}

	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, ragerr.Wrap(ragerr.KindVectorStoreConnectionFailed, "create store directory", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStoreConnectionFailed, "open database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, table: table, dims: dims, defaultSt: Eager{}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ VectorStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) migrate() error {
	// #nosec table name validated against validTableName above
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		source TEXT,
		custom_metadata TEXT,
		created_at INTEGER NOT NULL
	)`, s.table)
	if _, err := s.db.Exec(schema); err != nil {
		return ragerr.Wrap(ragerr.KindVectorStoreConnectionFailed, "create table", err)
	}
	indexes := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_document_id ON %s(document_id)", s.table, s.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_chunk_index ON %s(chunk_index)", s.table, s.table),
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return ragerr.Wrap(ragerr.KindVectorStoreConnectionFailed, "create index", err)
		}
	}
	return nil
}

// SetDefaultStrategy changes the strategy used by Search when none is
// passed explicitly.
func (s *SQLiteStore) SetDefaultStrategy(strat Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultSt = strat
	if lc, ok := strat.(LRUCached); ok {
		s.lru = newLRUEmbeddingCache(lc.Capacity)
	} else if h, ok := strat.(Hybrid); ok {
		s.lru = newLRUEmbeddingCache(h.Capacity)
	}
}

func packEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unpackEmbedding(buf []byte) []float32 {
	n := len(buf) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func marshalCustomMetadata(m map[string]entities.MetadataValue) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalCustomMetadata(s string) map[string]entities.MetadataValue {
	if s == "" || s == "{}" {
		return nil
	}
	var m map[string]entities.MetadataValue
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// Add inserts or replaces chunks within a single transaction.
func (s *SQLiteStore) Add(ctx context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.Embedding == nil || !c.Embedding.Valid() {
			return ragerr.New(ragerr.KindInsertionFailed, fmt.Sprintf("chunk %q missing a valid embedding", c.ID))
		}
		if c.Embedding.Dimensions() != s.dims {
			return ragerr.New(ragerr.KindInsertionFailed,
				fmt.Sprintf("expected %d dimensions, got %d", s.dims, c.Embedding.Dimensions()))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "begin transaction", err)
	}
	defer tx.Rollback()

	// #nosec table name validated
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s
		(id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table))
	if err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "prepare insert", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		custom, err := marshalCustomMetadata(c.Metadata.Custom)
		if err != nil {
			return ragerr.Wrap(ragerr.KindInsertionFailed, "marshal custom metadata", err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Content, packEmbedding(c.Embedding.Vector),
			c.Metadata.DocumentID, c.Metadata.Index, c.Metadata.Start, c.Metadata.End,
			c.Metadata.Source, custom, time.Now().UnixNano(),
		); err != nil {
			return ragerr.Wrap(ragerr.KindInsertionFailed, "insert chunk", err)
		}
		if s.lru != nil {
			s.lru.Remove(c.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return ragerr.Wrap(ragerr.KindInsertionFailed, "commit transaction", err)
	}
	return nil
}

func (s *SQLiteStore) scanRow(rows *sql.Rows) (entities.Chunk, []float32, error) {
	var (
		id, content, documentID, source, custom sql.NullString
		chunkIndex, startOffset, endOffset      int
		embeddingBlob                           []byte
		createdAtNano                           int64
	)
	if err := rows.Scan(&id, &content, &embeddingBlob, &documentID, &chunkIndex,
		&startOffset, &endOffset, &source, &custom, &createdAtNano); err != nil {
		return entities.Chunk{}, nil, err
	}

	chunk := entities.Chunk{
		ID:      id.String,
		Content: content.String,
		Metadata: entities.ChunkMetadata{
			DocumentID: documentID.String,
			Index:      chunkIndex,
			Start:      startOffset,
			End:        endOffset,
			Source:     source.String,
			Custom:     unmarshalCustomMetadata(custom.String),
		},
	}
	vec := unpackEmbedding(embeddingBlob)
	return chunk, vec, nil
}

// Search scans rows brute-force using the store's default strategy.
func (s *SQLiteStore) Search(ctx context.Context, query entities.Embedding, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	s.mu.Lock()
	strat := s.defaultSt
	s.mu.Unlock()
	return s.SearchWithStrategy(ctx, query, limit, f, strat)
}

// SearchWithStrategy scans rows using an explicitly chosen strategy,
// allowing callers to override the store's default per call.
func (s *SQLiteStore) SearchWithStrategy(ctx context.Context, query entities.Embedding, limit int, f filter.Filter, strat Strategy) ([]entities.RetrievalResult, error) {
	if limit < 1 {
		return nil, ragerr.New(ragerr.KindInvalidConfiguration, "limit must be >= 1")
	}

	switch st := strat.(type) {
	case Eager:
		return s.searchEager(ctx, query, limit, f)
	case Streaming:
		return s.searchStreaming(ctx, query, limit, f, st.BatchSize)
	case LRUCached:
		return s.searchLRUCached(ctx, query, limit, f, st.Capacity)
	case Hybrid:
		return s.searchHybrid(ctx, query, limit, f, st)
	default:
		return s.searchEager(ctx, query, limit, f)
	}
}

func (s *SQLiteStore) selectAllQuery() string {
	// #nosec table name validated
	return fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at FROM %s`, s.table)
}

func (s *SQLiteStore) searchEager(ctx context.Context, query entities.Embedding, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	rows, err := s.db.QueryContext(ctx, s.selectAllQuery())
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "query rows", err)
	}
	defer rows.Close()

	h := newBoundedHeap(limit)
	byID := make(map[string]entities.Chunk)

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "search cancelled", err)
		}
		chunk, vec, err := s.scanRow(rows)
		if err != nil {
			continue // skip rows that fail to decode; no partial-failure halt
		}
		if !f.Match(chunk.Metadata) {
			continue
		}
		score := entities.CosineSimilarity(query, entities.Embedding{Vector: vec})
		byID[chunk.ID] = chunk
		h.Offer(heapItem{id: chunk.ID, score: float64(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "iterate rows", err)
	}

	return toResults(h, byID), nil
}

func (s *SQLiteStore) searchStreaming(ctx context.Context, query entities.Embedding, limit int, f filter.Filter, batchSize int) ([]entities.RetrievalResult, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	h := newBoundedHeap(limit)
	byID := make(map[string]entities.Chunk)

	// #nosec table name validated
	stmtSQL := fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at
		FROM %s ORDER BY id LIMIT ? OFFSET ?`, s.table)

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "search cancelled", err)
		}
		rows, err := s.db.QueryContext(ctx, stmtSQL, batchSize, offset)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "query batch", err)
		}

		n := 0
		for rows.Next() {
			n++
			chunk, vec, err := s.scanRow(rows)
			if err != nil {
				continue
			}
			if !f.Match(chunk.Metadata) {
				continue
			}
			score := entities.CosineSimilarity(query, entities.Embedding{Vector: vec})
			byID[chunk.ID] = chunk
			h.Offer(heapItem{id: chunk.ID, score: float64(score)})
		}
		rowErr := rows.Err()
		rows.Close()
		if rowErr != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "iterate batch", rowErr)
		}
		if n < batchSize {
			break
		}
		offset += batchSize
	}

	return toResults(h, byID), nil
}

func (s *SQLiteStore) searchLRUCached(ctx context.Context, query entities.Embedding, limit int, f filter.Filter, capacity int) ([]entities.RetrievalResult, error) {
	s.mu.Lock()
	if s.lru == nil {
		if capacity <= 0 {
			capacity = 5000
		}
		s.lru = newLRUEmbeddingCache(capacity)
	}
	lru := s.lru
	s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, s.selectAllQuery())
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "query rows", err)
	}
	defer rows.Close()

	h := newBoundedHeap(limit)
	byID := make(map[string]entities.Chunk)

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "search cancelled", err)
		}
		chunk, vec, err := s.scanRow(rows)
		if err != nil {
			continue
		}
		if !f.Match(chunk.Metadata) {
			continue
		}
		lru.Put(chunk.ID, vec)
		score := entities.CosineSimilarity(query, entities.Embedding{Vector: vec})
		byID[chunk.ID] = chunk
		h.Offer(heapItem{id: chunk.ID, score: float64(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "iterate rows", err)
	}

	return toResults(h, byID), nil
}

// searchHybrid checks the LRU cache first, then streams the remaining
// (cold) rows not present in the cache, merging both into one heap.
func (s *SQLiteStore) searchHybrid(ctx context.Context, query entities.Embedding, limit int, f filter.Filter, st Hybrid) ([]entities.RetrievalResult, error) {
	s.mu.Lock()
	if s.lru == nil {
		s.lru = newLRUEmbeddingCache(st.Capacity)
	}
	lru := s.lru
	s.mu.Unlock()

	h := newBoundedHeap(limit)
	byID := make(map[string]entities.Chunk)
	warm := lru.Keys()
	warmSet := make(map[string]struct{}, len(warm))

	for _, id := range warm {
		if err := ctx.Err(); err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "search cancelled", err)
		}
		vec, ok := lru.Get(id)
		if !ok {
			continue
		}
		chunk, err := s.chunkByIDLocked(ctx, id)
		if err != nil {
			continue
		}
		if !f.Match(chunk.Metadata) {
			continue
		}
		warmSet[id] = struct{}{}
		score := entities.CosineSimilarity(query, entities.Embedding{Vector: vec})
		byID[chunk.ID] = chunk
		h.Offer(heapItem{id: chunk.ID, score: float64(score)})
	}

	batchSize := st.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	// #nosec table name validated
	stmtSQL := fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at
		FROM %s ORDER BY id LIMIT ? OFFSET ?`, s.table)

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "search cancelled", err)
		}
		rows, err := s.db.QueryContext(ctx, stmtSQL, batchSize, offset)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "query batch", err)
		}
		n := 0
		for rows.Next() {
			n++
			chunk, vec, err := s.scanRow(rows)
			if err != nil {
				continue
			}
			if _, cached := warmSet[chunk.ID]; cached {
				continue
			}
			if !f.Match(chunk.Metadata) {
				continue
			}
			lru.Put(chunk.ID, vec)
			score := entities.CosineSimilarity(query, entities.Embedding{Vector: vec})
			byID[chunk.ID] = chunk
			h.Offer(heapItem{id: chunk.ID, score: float64(score)})
		}
		rowErr := rows.Err()
		rows.Close()
		if rowErr != nil {
			return nil, ragerr.Wrap(ragerr.KindSearchFailed, "iterate batch", rowErr)
		}
		if n < batchSize {
			break
		}
		offset += batchSize
	}

	return toResults(h, byID), nil
}

func toResults(h *boundedHeap, byID map[string]entities.Chunk) []entities.RetrievalResult {
	items := h.Items()
	out := make([]entities.RetrievalResult, 0, len(items))
	for _, item := range items {
		out = append(out, entities.RetrievalResult{Chunk: byID[item.id], Score: item.score})
	}
	return out
}

// Delete removes chunks by id.
func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "begin delete transaction", err)
	}
	defer tx.Rollback()

	// #nosec table name validated
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table))
	if err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "prepare delete", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return ragerr.Wrap(ragerr.KindSearchFailed, "delete chunk", err)
		}
		if s.lru != nil {
			s.lru.Remove(id)
		}
	}
	return tx.Commit()
}

// DeleteByFilter collects matching ids first, then deletes them in a
// transaction.
func (s *SQLiteStore) DeleteByFilter(ctx context.Context, f filter.Filter) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at FROM %s`, s.table))
	if err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "query rows for delete", err)
	}

	var ids []string
	for rows.Next() {
		chunk, _, err := s.scanRow(rows)
		if err != nil {
			continue
		}
		if f.Match(chunk.Metadata) {
			ids = append(ids, chunk.ID)
		}
	}
	rows.Close()

	return s.Delete(ctx, ids)
}

// Count returns the row count.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	// #nosec table name validated
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, ragerr.Wrap(ragerr.KindSearchFailed, "count rows", err)
	}
	return n, nil
}

// Dimensions returns the store's configured dimensionality.
func (s *SQLiteStore) Dimensions() int { return s.dims }

// ChunkByID retrieves a single chunk, or ok=false if absent.
func (s *SQLiteStore) ChunkByID(ctx context.Context, id string) (entities.Chunk, bool, error) {
	c, err := s.chunkByIDLocked(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return entities.Chunk{}, false, nil
		}
		return entities.Chunk{}, false, ragerr.Wrap(ragerr.KindSearchFailed, "chunk by id", err)
	}
	return c, true, nil
}

func (s *SQLiteStore) chunkByIDLocked(ctx context.Context, id string) (entities.Chunk, error) {
	// #nosec table name validated
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at FROM %s WHERE id = ?`, s.table), id)

	var (
		rid, content, documentID, source, custom sql.NullString
		chunkIndex, startOffset, endOffset        int
		embeddingBlob                             []byte
		createdAtNano                              int64
	)
	if err := row.Scan(&rid, &content, &embeddingBlob, &documentID, &chunkIndex, &startOffset, &endOffset, &source, &custom, &createdAtNano); err != nil {
		return entities.Chunk{}, err
	}
	return entities.Chunk{
		ID:      rid.String,
		Content: content.String,
		Metadata: entities.ChunkMetadata{
			DocumentID: documentID.String,
			Index:      chunkIndex,
			Start:      startOffset,
			End:        endOffset,
			Source:     source.String,
			Custom:     unmarshalCustomMetadata(custom.String),
		},
	}, nil
}

// EmbeddingByID retrieves a single embedding, or ok=false if absent.
func (s *SQLiteStore) EmbeddingByID(ctx context.Context, id string) (entities.Embedding, bool, error) {
	// #nosec table name validated
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT embedding FROM %s WHERE id = ?`, s.table), id)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return entities.Embedding{}, false, nil
		}
		return entities.Embedding{}, false, ragerr.Wrap(ragerr.KindSearchFailed, "embedding by id", err)
	}
	return entities.Embedding{Vector: unpackEmbedding(blob)}, true, nil
}

// ContainsID reports whether id exists in the store.
func (s *SQLiteStore) ContainsID(ctx context.Context, id string) (bool, error) {
	var n int
	// #nosec table name validated
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, s.table), id).Scan(&n); err != nil {
		return false, ragerr.Wrap(ragerr.KindSearchFailed, "contains id", err)
	}
	return n > 0, nil
}

// ChunksForDocument returns chunks for a document, ordered by chunk
// index.
func (s *SQLiteStore) ChunksForDocument(ctx context.Context, documentID string) ([]entities.Chunk, error) {
	// #nosec table name validated
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, embedding, document_id, chunk_index, start_offset, end_offset, source, custom_metadata, created_at FROM %s WHERE document_id = ? ORDER BY chunk_index`, s.table), documentID)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "chunks for document", err)
	}
	defer rows.Close()

	var out []entities.Chunk
	for rows.Next() {
		chunk, _, err := s.scanRow(rows)
		if err != nil {
			continue
		}
		out = append(out, chunk)
	}
	return out, rows.Err()
}

// AllDocumentIDs returns the distinct document ids stored.
func (s *SQLiteStore) AllDocumentIDs(ctx context.Context) ([]string, error) {
	// #nosec table name validated
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT document_id FROM %s`, s.table))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindSearchFailed, "all document ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear removes every row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// #nosec table name validated
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "clear table", err)
	}
	if s.lru != nil {
		s.lru.Clear()
	}
	return nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
