package cmd

import (
	"fmt"

	ctxbuilder "github.com/Aman-CERP/ragkit/context"
	"github.com/Aman-CERP/ragkit/config"
	"github.com/Aman-CERP/ragkit/pipeline"
	"github.com/Aman-CERP/ragkit/provider/echollm"
	"github.com/Aman-CERP/ragkit/provider/fileloader"
	"github.com/Aman-CERP/ragkit/provider/staticembed"
	"github.com/Aman-CERP/ragkit/provider/textchunk"
	"github.com/Aman-CERP/ragkit/store"
)

// buildPipeline wires a Pipeline from the resolved configuration: a
// vector store per cfg.Store.Backend, the static embedding provider
// sized to cfg.Store.Dimensions, a paragraph chunker, the plain-text
// file loader, and (if requested) the echo demo language model.
func buildPipeline(cfg *config.Config, withLLM bool) (*pipeline.Pipeline, func() error, error) {
	vectorStore, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder := staticembed.New(cfg.Store.Dimensions)
	chunker := textchunk.New(cfg.Context.TokenBudget/10, 40)

	opts := []pipeline.Option{
		pipeline.WithLoaders(fileloader.New()),
		pipeline.WithContextOptions(contextOptions(cfg)),
	}
	if withLLM {
		opts = append(opts, pipeline.WithLLM(echollm.New()))
	}

	p := pipeline.New(embedder, vectorStore, chunker, opts...)
	return p, vectorStore.Close, nil
}

func buildStore(cfg *config.Config) (store.VectorStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "hnsw":
		s, err := store.NewHNSWVectorStore(cfg.Store.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("create hnsw store: %w", err)
		}
		return s, nil
	case "sqlite", "":
		s, err := store.NewSQLiteStore(cfg.Store.Path, cfg.Store.Table, cfg.Store.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func contextOptions(cfg *config.Config) ctxbuilder.Options {
	return ctxbuilder.Options{
		TokenBudget:     cfg.Context.TokenBudget,
		PerSourceCap:    cfg.Context.PerSourceCap,
		IncludeMetadata: cfg.Context.IncludeMetadata,
		IncludeScore:    cfg.Context.IncludeScore,
		Separator:       cfg.Context.Separator,
	}
}
