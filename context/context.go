// Package context formats ranked retrieval results into a prompt-ready
// string (or a structured equivalent) under a token budget.
package context

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aman-CERP/ragkit/entities"
)

// DefaultSeparator joins formatted chunk blocks.
const DefaultSeparator = "\n\n---\n\n"

// Options configures context assembly.
type Options struct {
	// TokenBudget is the maximum token count across all joined blocks
	// and separators. Zero or negative means unbounded.
	TokenBudget int

	// PerSourceCap limits how many chunks from the same source may
	// appear. Zero or negative means no cap.
	PerSourceCap int

	// IncludeMetadata prefixes each block with a "[Source N]
	// (source_name)" header.
	IncludeMetadata bool

	// IncludeScore appends "[score: ...]" to the metadata header. Has
	// no effect unless IncludeMetadata is set.
	IncludeScore bool

	// Separator overrides DefaultSeparator.
	Separator string
}

func (o Options) separator() string {
	if o.Separator != "" {
		return o.Separator
	}
	return DefaultSeparator
}

var wordRegex = regexp.MustCompile(`[A-Za-z0-9]+|[^\sA-Za-z0-9]`)

// CountTokens approximates token count with a simple word and
// punctuation splitter, consistent with how callers typically budget
// language-model prompts.
func CountTokens(text string) int {
	return len(wordRegex.FindAllString(text, -1))
}

// Block is one formatted unit of context, before joining.
type Block struct {
	Index   int
	Content string
	Source  string
	Score   float64
}

// Build applies the per-source cap, then greedily accumulates
// formatted blocks within the token budget, joining them with the
// configured separator.
func Build(results []entities.RetrievalResult, opts Options) string {
	capped := applyPerSourceCap(results, opts.PerSourceCap)

	sep := opts.separator()
	sepTokens := CountTokens(sep)

	var b strings.Builder
	tokens := 0
	wrote := false

	for i, r := range capped {
		block := formatBlock(i, r, opts)
		blockTokens := CountTokens(block)

		addTokens := blockTokens
		if wrote {
			addTokens += sepTokens
		}

		if opts.TokenBudget > 0 && tokens+addTokens > opts.TokenBudget {
			break
		}

		if wrote {
			b.WriteString(sep)
		}
		b.WriteString(block)
		tokens += addTokens
		wrote = true
	}

	return b.String()
}

// BuildStructured emits one Block per surviving chunk (after the
// per-source cap and token budget are applied) without flattening to
// a single string.
func BuildStructured(results []entities.RetrievalResult, opts Options) []Block {
	capped := applyPerSourceCap(results, opts.PerSourceCap)

	sep := opts.separator()
	sepTokens := CountTokens(sep)

	blocks := make([]Block, 0, len(capped))
	tokens := 0

	for i, r := range capped {
		content := formatBlock(i, r, opts)
		blockTokens := CountTokens(content)

		addTokens := blockTokens
		if len(blocks) > 0 {
			addTokens += sepTokens
		}

		if opts.TokenBudget > 0 && tokens+addTokens > opts.TokenBudget {
			break
		}

		blocks = append(blocks, Block{
			Index:   i,
			Content: r.Chunk.Content,
			Source:  r.Chunk.Metadata.Source,
			Score:   r.Score,
		})
		tokens += addTokens
	}

	return blocks
}

func formatBlock(index int, r entities.RetrievalResult, opts Options) string {
	if !opts.IncludeMetadata {
		return r.Chunk.Content
	}

	header := formatHeader(index, r, opts.IncludeScore)
	return header + "\n" + r.Chunk.Content
}

func formatHeader(index int, r entities.RetrievalResult, includeScore bool) string {
	var b strings.Builder
	b.WriteString("[Source ")
	b.WriteString(strconv.Itoa(index + 1))
	b.WriteString("] (")
	b.WriteString(r.Chunk.Metadata.Source)
	b.WriteString(")")
	if includeScore {
		b.WriteString(" [score: ")
		b.WriteString(strconv.FormatFloat(r.Score, 'f', -1, 64))
		b.WriteString("]")
	}
	return b.String()
}

func applyPerSourceCap(results []entities.RetrievalResult, limit int) []entities.RetrievalResult {
	if limit <= 0 {
		return results
	}
	out := make([]entities.RetrievalResult, 0, len(results))
	counts := make(map[string]int)
	for _, r := range results {
		src := r.Chunk.Metadata.Source
		if counts[src] >= limit {
			continue
		}
		counts[src]++
		out = append(out, r)
	}
	return out
}
