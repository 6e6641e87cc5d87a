package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/ragkit/pipeline"
)

// PlainRenderer writes one line per progress event, suited to pipes
// and CI logs.
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	errors []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer writing to cfg.Output.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

func (r *PlainRenderer) Start(ctx context.Context) error { return nil }

func (r *PlainRenderer) UpdateProgress(event pipeline.IngestionProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := event.Message
	if msg == "" {
		msg = event.DocumentID
	}

	if event.Total > 0 {
		fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", phaseIcon(event.Phase), event.Current, event.Total, msg)
	} else if msg != "" {
		fmt.Fprintf(r.out, "[%s] %s\n", phaseIcon(event.Phase), msg)
	}
}

func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)
	if event.DocumentID != "" {
		fmt.Fprintf(r.out, "ERROR: %s: %v\n", event.DocumentID, event.Err)
	} else {
		fmt.Fprintf(r.out, "ERROR: %v\n", event.Err)
	}
}

func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Complete: %d documents, %d chunks in %s", stats.Documents, stats.Chunks, stats.Duration)
	if stats.Errors > 0 {
		fmt.Fprintf(r.out, " (%d errors)", stats.Errors)
	}
	fmt.Fprintln(r.out)
}

func (r *PlainRenderer) Stop() error { return nil }
