// Package fileloader provides the minimum concrete DocumentLoader
// needed to make ragctl's ingest command runnable against plain text
// and Markdown files on disk. Richer loaders (HTML, PDF, CSV, a real
// frontmatter parser) are the external collaborators spec.md leaves
// out of scope; this one stays deliberately plain.
package fileloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/ragerr"
)

// Loader reads UTF-8 text from .txt and .md files.
type Loader struct{}

// New creates a Loader.
func New() *Loader { return &Loader{} }

var extensions = []string{".txt", ".md", ".markdown"}

func (l *Loader) SupportedExtensions() []string { return extensions }

func (l *Loader) CanLoad(url string) bool {
	ext := strings.ToLower(filepath.Ext(url))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (l *Loader) Load(_ context.Context, path string) (entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Document{}, ragerr.Wrap(ragerr.KindLoadingFailed, "read file", err)
	}
	return l.document(path, data), nil
}

func (l *Loader) LoadBytes(_ context.Context, data []byte, metadata entities.DocumentMetadata) (entities.Document, error) {
	return entities.Document{
		ID:        entities.NewID(),
		Content:   string(data),
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, nil
}

func (l *Loader) document(path string, data []byte) entities.Document {
	return entities.Document{
		ID:      entities.NewID(),
		Content: string(data),
		Metadata: entities.DocumentMetadata{
			Source:   path,
			Title:    filepath.Base(path),
			MimeType: mimeForExt(filepath.Ext(path)),
		},
		CreatedAt: time.Now(),
	}
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
