// Package echollm provides a deterministic, API-key-free LLMProvider
// for ragctl's demo mode: it doesn't call out to any model, it just
// echoes back a templated answer built from the prompt, so the
// generation half of Pipeline.Query/StreamQuery has something real to
// exercise without requiring external credentials.
package echollm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/ragkit/provider"
)

// LLM is a no-network LLMProvider stand-in.
type LLM struct {
	// ChunkDelay pauses between streamed word chunks, simulating a
	// real token stream. Zero means no delay.
	ChunkDelay time.Duration
}

// New creates an LLM with no artificial streaming delay.
func New() *LLM { return &LLM{} }

func (l *LLM) Name() string          { return "echo" }
func (l *LLM) Model() string         { return "echo-1" }
func (l *LLM) MaxContextTokens() int { return 8192 }

func (l *LLM) Generate(_ context.Context, prompt, _ string, _ provider.GenerateOptions) (string, error) {
	return answer(prompt), nil
}

func answer(prompt string) string {
	idx := strings.Index(prompt, "Question:")
	question := prompt
	if idx >= 0 {
		question = strings.TrimSpace(prompt[idx+len("Question:"):])
	}
	return fmt.Sprintf("Based on the retrieved context, here is what's relevant to %q.", question)
}

// Stream splits the echoed answer into word-sized chunks on the
// returned channel, closing it when done or ctx is cancelled.
func (l *LLM) Stream(ctx context.Context, prompt, systemPrompt string, opts provider.GenerateOptions) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, word := range strings.Fields(answer(prompt)) {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case out <- word + " ":
			}
			if l.ChunkDelay > 0 {
				time.Sleep(l.ChunkDelay)
			}
		}
	}()
	return out, nil
}
