// Package textchunk provides a paragraph-packing chunker: the
// minimum concrete ChunkingStrategy needed to make ragctl's ingest
// command runnable end to end.
package textchunk

import (
	"fmt"
	"strings"

	ctxbuilder "github.com/Aman-CERP/ragkit/context"
	"github.com/Aman-CERP/ragkit/entities"
)

const (
	// DefaultMaxTokens is the token ceiling used when packing
	// paragraphs into a chunk. A paragraph is never split, so a single
	// paragraph longer than this becomes one oversized chunk.
	DefaultMaxTokens = 400
	// DefaultOverlapTokens carries trailing words from one chunk into
	// the next so a query landing near a boundary still finds context
	// on both sides.
	DefaultOverlapTokens = 40
)

// Chunker splits a document's content on blank-line paragraph breaks,
// packing consecutive paragraphs into chunks up to MaxTokens, each
// chunk overlapping the previous by OverlapTokens words.
type Chunker struct {
	MaxTokens     int
	OverlapTokens int
}

// New creates a Chunker with the given limits. A non-positive
// maxTokens or a negative overlapTokens falls back to the package
// default; an overlapTokens of 0 disables overlap.
func New(maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &Chunker{MaxTokens: maxTokens, OverlapTokens: overlapTokens}
}

// Chunk implements provider.ChunkingStrategy.
func (c *Chunker) Chunk(doc entities.Document) ([]entities.Chunk, error) {
	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return nil, nil
	}

	paragraphs := splitParagraphs(content)
	var chunks []entities.Chunk
	var current strings.Builder
	start := 0
	cursor := 0

	flush := func(end int) {
		text := strings.TrimSpace(current.String())
		if text == "" {
			return
		}
		chunks = append(chunks, entities.Chunk{
			ID:      fmt.Sprintf("%s-%d", doc.ID, len(chunks)),
			Content: text,
			Metadata: entities.ChunkMetadata{
				DocumentID: doc.ID,
				Index:      len(chunks),
				Start:      start,
				End:        end,
				Source:     doc.Metadata.Source,
			},
		})
	}

	for _, para := range paragraphs {
		paraTokens := ctxbuilder.CountTokens(para)
		currentTokens := ctxbuilder.CountTokens(current.String())

		if current.Len() > 0 && currentTokens+paraTokens > c.MaxTokens {
			flush(cursor)
			current.Reset()
			current.WriteString(overlapTail(chunks, c.OverlapTokens))
			start = cursor
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		cursor += len(para) + 2
	}
	flush(len(content))

	return chunks, nil
}

func splitParagraphs(content string) []string {
	raw := strings.Split(content, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// overlapTail returns the trailing overlapTokens words of the last
// flushed chunk, seeding the next chunk's prefix.
func overlapTail(chunks []entities.Chunk, overlapTokens int) string {
	if len(chunks) == 0 || overlapTokens <= 0 {
		return ""
	}
	words := strings.Fields(chunks[len(chunks)-1].Content)
	if len(words) <= overlapTokens {
		return strings.Join(words, " ") + "\n\n"
	}
	return strings.Join(words[len(words)-overlapTokens:], " ") + "\n\n"
}
