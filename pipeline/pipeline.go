// Package pipeline orchestrates ingestion and querying: chunking and
// embedding documents into a vector store, then retrieving and
// optionally generating answers over them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	ctxbuilder "github.com/Aman-CERP/ragkit/context"
	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/provider"
	"github.com/Aman-CERP/ragkit/ragerr"
	"github.com/Aman-CERP/ragkit/retriever"
	"github.com/Aman-CERP/ragkit/store"
)

// IngestionPhase names a step of document ingestion progress.
type IngestionPhase string

const (
	PhaseValidating IngestionPhase = "validating"
	PhaseChunking   IngestionPhase = "chunking"
	PhaseEmbedding  IngestionPhase = "embedding"
	PhaseStoring    IngestionPhase = "storing"
	PhaseComplete   IngestionPhase = "complete"
	PhaseFailed     IngestionPhase = "failed"
)

// IngestionProgress reports a single step of an ingest operation.
type IngestionProgress struct {
	Phase      IngestionPhase
	Current    int
	Total      int
	DocumentID string
	Message    string
}

// Fraction returns Current/Total, or 0 if Total is 0.
func (p IngestionProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total)
}

// QueryPhase names a step of query progress.
type QueryPhase string

const (
	QueryPhaseRetrieving QueryPhase = "retrieving"
	QueryPhaseGenerating QueryPhase = "generating"
	QueryPhaseComplete   QueryPhase = "complete"
	QueryPhaseFailed     QueryPhase = "failed"
)

// QueryProgress reports a single step of a query operation.
type QueryProgress struct {
	Phase   QueryPhase
	Message string
}

// IngestionHandler receives IngestionProgress events.
type IngestionHandler func(IngestionProgress)

// QueryHandler receives QueryProgress events.
type QueryHandler func(QueryProgress)

// StreamEventKind names a StreamQuery event.
type StreamEventKind string

const (
	EventRetrievalStarted  StreamEventKind = "retrievalStarted"
	EventRetrievalComplete StreamEventKind = "retrievalComplete"
	EventGenerationStarted StreamEventKind = "generationStarted"
	EventGenerationChunk   StreamEventKind = "generationChunk"
	EventGenerationDone    StreamEventKind = "generationComplete"
	EventComplete          StreamEventKind = "complete"
	EventError             StreamEventKind = "error"
)

// StreamEvent is one element of a StreamQuery event sequence.
type StreamEvent struct {
	Kind    StreamEventKind
	Sources []entities.RetrievalResult
	Text    string
	Answer  QueryResponse
	Err     error
}

// QueryResponse is the outcome of a non-streamed Query call.
type QueryResponse struct {
	Answer  string
	Sources []entities.RetrievalResult
}

// Statistics summarizes the pipeline's current state.
type Statistics struct {
	DocumentCount       int
	ChunkCount          int
	EmbeddingDimensions int
	StoreName           string
	EmbedderName        string
}

// Pipeline ties together an embedding provider, vector store, optional
// language model, chunker, and loader registry.
type Pipeline struct {
	mu sync.RWMutex

	embedder provider.EmbeddingProvider
	llm      provider.LLMProvider
	vector   store.VectorStore
	chunker  provider.ChunkingStrategy
	loaders  []provider.DocumentLoader

	contextOpts ctxbuilder.Options

	documentCount int

	ingestionHandler IngestionHandler
	queryHandler     QueryHandler
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLLM attaches a language-model provider, enabling Query/StreamQuery.
func WithLLM(llm provider.LLMProvider) Option {
	return func(p *Pipeline) { p.llm = llm }
}

// WithLoaders registers document loaders consulted in order by Ingest(url).
func WithLoaders(loaders ...provider.DocumentLoader) Option {
	return func(p *Pipeline) { p.loaders = append(p.loaders, loaders...) }
}

// WithContextOptions overrides the default context-assembly options.
func WithContextOptions(opts ctxbuilder.Options) Option {
	return func(p *Pipeline) { p.contextOpts = opts }
}

// New constructs a Pipeline over the given embedder, store, and chunker.
func New(embedder provider.EmbeddingProvider, vector store.VectorStore, chunker provider.ChunkingStrategy, opts ...Option) *Pipeline {
	p := &Pipeline{
		embedder: embedder,
		vector:   vector,
		chunker:  chunker,
		contextOpts: ctxbuilder.Options{
			TokenBudget:     4000,
			IncludeMetadata: true,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetIngestionHandler sets the handler invoked during ingest operations.
// Handlers are captured at the start of an operation; changes here do
// not affect an in-flight call.
func (p *Pipeline) SetIngestionHandler(h IngestionHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ingestionHandler = h
}

// SetQueryHandler sets the handler invoked during query operations.
func (p *Pipeline) SetQueryHandler(h QueryHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queryHandler = h
}

func (p *Pipeline) captureIngestionHandler() IngestionHandler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ingestionHandler
}

func (p *Pipeline) captureQueryHandler() QueryHandler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.queryHandler
}

func emitIngestion(h IngestionHandler, evt IngestionProgress) {
	if h != nil {
		h(evt)
	}
}

func emitQuery(h QueryHandler, evt QueryProgress) {
	if h != nil {
		h(evt)
	}
}

// Ingest chunks, embeds, and stores a single document, emitting
// progress through the currently-registered ingestion handler.
func (p *Pipeline) Ingest(ctx context.Context, doc entities.Document) (int, error) {
	h := p.captureIngestionHandler()
	docID := doc.ID

	emitIngestion(h, IngestionProgress{Phase: PhaseValidating, DocumentID: docID})
	if doc.Content == "" {
		emitIngestion(h, IngestionProgress{Phase: PhaseComplete, Current: 0, Total: 0, DocumentID: docID})
		return 0, nil
	}

	emitIngestion(h, IngestionProgress{Phase: PhaseChunking, DocumentID: docID})
	chunks, err := p.chunker.Chunk(doc)
	if err != nil {
		emitIngestion(h, IngestionProgress{Phase: PhaseFailed, DocumentID: docID, Message: err.Error()})
		return 0, ragerr.Wrap(ragerr.KindChunkingFailed, "chunk document", err)
	}
	if len(chunks) == 0 {
		emitIngestion(h, IngestionProgress{Phase: PhaseComplete, Current: 0, Total: 0, DocumentID: docID})
		return 0, nil
	}
	n := len(chunks)

	emitIngestion(h, IngestionProgress{Phase: PhaseEmbedding, Current: 0, Total: n, DocumentID: docID})
	texts := make([]string, n)
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		emitIngestion(h, IngestionProgress{Phase: PhaseFailed, DocumentID: docID, Message: err.Error()})
		return 0, ragerr.Wrap(ragerr.KindEmbeddingFailed, "embed chunks", err)
	}
	if len(embeddings) != n {
		err := ragerr.New(ragerr.KindEmbeddingFailed, fmt.Sprintf("expected %d embeddings, got %d", n, len(embeddings)))
		emitIngestion(h, IngestionProgress{Phase: PhaseFailed, DocumentID: docID, Message: err.Error()})
		return 0, err
	}
	for i := range chunks {
		chunks[i] = chunks[i].WithEmbedding(embeddings[i])
	}
	emitIngestion(h, IngestionProgress{Phase: PhaseEmbedding, Current: n, Total: n, DocumentID: docID})

	emitIngestion(h, IngestionProgress{Phase: PhaseStoring, Current: 0, Total: n, DocumentID: docID})
	if err := p.vector.Add(ctx, chunks); err != nil {
		emitIngestion(h, IngestionProgress{Phase: PhaseFailed, DocumentID: docID, Message: err.Error()})
		return 0, ragerr.Wrap(ragerr.KindInsertionFailed, "store chunks", err)
	}

	p.mu.Lock()
	p.documentCount++
	p.mu.Unlock()

	emitIngestion(h, IngestionProgress{Phase: PhaseStoring, Current: n, Total: n, DocumentID: docID})
	emitIngestion(h, IngestionProgress{Phase: PhaseComplete, Current: n, Total: n, DocumentID: docID})

	slog.Debug("ingested document", slog.String("documentId", docID), slog.Int("chunks", n))
	return n, nil
}

// IngestAll ingests documents sequentially, aborting on the first
// failure; documents stored before the failure are not rolled back.
func (p *Pipeline) IngestAll(ctx context.Context, docs []entities.Document) (int, error) {
	total := 0
	for _, doc := range docs {
		n, err := p.Ingest(ctx, doc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// IngestURL loads a document via the first registered loader that
// accepts url, then ingests it.
func (p *Pipeline) IngestURL(ctx context.Context, url string) (int, error) {
	for _, loader := range p.loaders {
		if !loader.CanLoad(url) {
			continue
		}
		doc, err := loader.Load(ctx, url)
		if err != nil {
			return 0, ragerr.Wrap(ragerr.KindLoadingFailed, "load url", err)
		}
		return p.Ingest(ctx, doc)
	}
	return 0, ragerr.New(ragerr.KindUnsupportedFileType, fmt.Sprintf("no loader accepts %q", url))
}

// IngestDirectory enumerates regular files under dir (recursively if
// requested), ingesting each one a registered loader accepts.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string, recursive bool) (int, error) {
	total := 0
	walk := func(path string, isDir bool) error {
		if isDir {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		for _, loader := range p.loaders {
			if loader.CanLoad(path) {
				n, err := p.IngestURL(ctx, path)
				if err != nil {
					return err
				}
				total += n
				break
			}
		}
		return nil
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return walk(path, info.IsDir())
	})
	if err != nil {
		return total, ragerr.Wrap(ragerr.KindLoadingFailed, "walk directory", err)
	}
	return total, nil
}

// Retrieve bypasses generation, returning ranked chunks for a query.
func (p *Pipeline) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	r := retriever.NewVectorRetriever(p.embedder, p.vector)
	return r.Retrieve(ctx, query, limit, f)
}

// Query retrieves context for question and, if a language model is
// configured, generates an answer grounded in it.
func (p *Pipeline) Query(ctx context.Context, question string, limit int, f filter.Filter) (QueryResponse, error) {
	h := p.captureQueryHandler()

	emitQuery(h, QueryProgress{Phase: QueryPhaseRetrieving})
	sources, err := p.Retrieve(ctx, question, limit, f)
	if err != nil {
		emitQuery(h, QueryProgress{Phase: QueryPhaseFailed, Message: err.Error()})
		return QueryResponse{}, err
	}

	if p.llm == nil {
		emitQuery(h, QueryProgress{Phase: QueryPhaseComplete})
		return QueryResponse{Sources: sources}, nil
	}

	emitQuery(h, QueryProgress{Phase: QueryPhaseGenerating})
	prompt := p.buildPrompt(question, sources)
	answer, err := p.llm.Generate(ctx, prompt, "", provider.GenerateOptions{})
	if err != nil {
		emitQuery(h, QueryProgress{Phase: QueryPhaseFailed, Message: err.Error()})
		return QueryResponse{}, ragerr.Wrap(ragerr.KindGenerationFailed, "generate answer", err)
	}

	emitQuery(h, QueryProgress{Phase: QueryPhaseComplete})
	return QueryResponse{Answer: answer, Sources: sources}, nil
}

// StreamQuery emits retrievalStarted, retrievalComplete, generationStarted,
// a generationChunk per streamed token, generationComplete, and a
// terminal complete or error event, on the returned channel.
func (p *Pipeline) StreamQuery(ctx context.Context, question string, limit int, f filter.Filter) <-chan StreamEvent {
	out := make(chan StreamEvent)

	go func() {
		defer close(out)

		out <- StreamEvent{Kind: EventRetrievalStarted}
		sources, err := p.Retrieve(ctx, question, limit, f)
		if err != nil {
			out <- StreamEvent{Kind: EventError, Err: err}
			return
		}
		out <- StreamEvent{Kind: EventRetrievalComplete, Sources: sources}

		if p.llm == nil {
			resp := QueryResponse{Sources: sources}
			out <- StreamEvent{Kind: EventComplete, Answer: resp, Sources: sources}
			return
		}

		out <- StreamEvent{Kind: EventGenerationStarted}
		prompt := p.buildPrompt(question, sources)
		chunks, err := p.llm.Stream(ctx, prompt, "", provider.GenerateOptions{})
		if err != nil {
			out <- StreamEvent{Kind: EventError, Err: ragerr.Wrap(ragerr.KindGenerationFailed, "start generation", err)}
			return
		}

		var full []byte
		for chunk := range chunks {
			full = append(full, chunk...)
			out <- StreamEvent{Kind: EventGenerationChunk, Text: chunk}
		}

		answer := string(full)
		out <- StreamEvent{Kind: EventGenerationDone, Text: answer}

		resp := QueryResponse{Answer: answer, Sources: sources}
		out <- StreamEvent{Kind: EventComplete, Answer: resp, Sources: sources}
	}()

	return out
}

func (p *Pipeline) buildPrompt(question string, sources []entities.RetrievalResult) string {
	built := ctxbuilder.Build(sources, p.contextOpts)
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", built, question)
}

// Statistics reports the pipeline's document and chunk counts and the
// configured store/embedder names.
func (p *Pipeline) Statistics(ctx context.Context) (Statistics, error) {
	count, err := p.vector.Count(ctx)
	if err != nil {
		return Statistics{}, ragerr.Wrap(ragerr.KindRetrievalFailed, "count chunks", err)
	}

	p.mu.RLock()
	docCount := p.documentCount
	p.mu.RUnlock()

	return Statistics{
		DocumentCount:       docCount,
		ChunkCount:          count,
		EmbeddingDimensions: p.embedder.Dimensions(),
		StoreName:           fmt.Sprintf("%T", p.vector),
		EmbedderName:        p.embedder.Name(),
	}, nil
}

// Info extends Statistics with store/embedder compatibility: whether the
// currently configured embedder matches the model the store's existing
// vectors were produced with. Stores that don't track a model (e.g. a
// fresh in-memory store, or a backend without EmbedderCompat) report
// Compatible=true with an empty IndexedEmbedderModel.
type Info struct {
	Statistics

	IndexedEmbedderModel string
	Compatible           bool
}

// Info reports the pipeline's statistics plus whether the store's
// recorded embedder model (if any) matches the pipeline's configured
// embedder, generalizing Statistics with the teacher's index-info/model
// compatibility surface.
func (p *Pipeline) Info(ctx context.Context) (Info, error) {
	stats, err := p.Statistics(ctx)
	if err != nil {
		return Info{}, err
	}

	info := Info{Statistics: stats, Compatible: true}
	compat, ok := p.vector.(store.EmbedderCompat)
	if !ok {
		return info, nil
	}

	info.IndexedEmbedderModel = compat.EmbedderModel()
	if info.IndexedEmbedderModel != "" && info.IndexedEmbedderModel != p.embedder.Name() {
		info.Compatible = false
	}
	return info, nil
}

// Clear deletes every chunk in the store and resets the document counter.
func (p *Pipeline) Clear(ctx context.Context) error {
	all := filter.Exists("documentId")
	if err := p.vector.DeleteByFilter(ctx, all); err != nil {
		return ragerr.Wrap(ragerr.KindSearchFailed, "clear store", err)
	}
	p.mu.Lock()
	p.documentCount = 0
	p.mu.Unlock()
	return nil
}
