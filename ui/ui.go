// Package ui renders ingestion progress to a terminal, choosing
// between an interactive bubbletea view and a plain line-by-line
// fallback depending on the output stream.
package ui

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/ragkit/pipeline"
)

// ErrorEvent represents a failure surfaced for a single document.
type ErrorEvent struct {
	DocumentID string
	Err        error
}

// CompletionStats summarizes a finished ingest run.
type CompletionStats struct {
	Documents int
	Chunks    int
	Duration  string
	Errors    int
}

// Renderer displays ingestion progress.
type Renderer interface {
	Start(ctx context.Context) error
	UpdateProgress(event pipeline.IngestionProgress)
	AddError(event ErrorEvent)
	Complete(stats CompletionStats)
	Stop() error
}

// Config configures a Renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// ConfigOption modifies a Config.
type ConfigOption func(*Config)

// WithForcePlain forces the plain text renderer regardless of TTY detection.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

// WithNoColor disables styled output in the TUI renderer.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

// NewConfig builds a Config writing to output.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer picks a TUI renderer for interactive terminals and a
// plain renderer for pipes, CI, or --no-tui.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY reports whether w is a terminal file descriptor.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether NO_COLOR is set.
func DetectNoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// DetectCI reports whether a known CI environment variable is set.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if _, ok := os.LookupEnv(v); ok {
			return true
		}
	}
	return false
}

// phaseIcon renders a short uppercase tag for a phase, used by the
// plain renderer.
func phaseIcon(p pipeline.IngestionPhase) string {
	switch p {
	case pipeline.PhaseValidating:
		return "CHECK"
	case pipeline.PhaseChunking:
		return "CHUNK"
	case pipeline.PhaseEmbedding:
		return "EMBED"
	case pipeline.PhaseStoring:
		return "STORE"
	case pipeline.PhaseComplete:
		return "DONE"
	case pipeline.PhaseFailed:
		return "FAIL"
	default:
		return "????"
	}
}
