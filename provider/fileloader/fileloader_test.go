package fileloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanLoadMatchesSupportedExtensions(t *testing.T) {
	l := New()
	assert.True(t, l.CanLoad("notes.md"))
	assert.True(t, l.CanLoad("notes.txt"))
	assert.False(t, l.CanLoad("notes.pdf"))
}

func TestLoadReadsFileContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello there"), 0644))

	l := New()
	doc, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello there", doc.Content)
	assert.Equal(t, path, doc.Metadata.Source)
	assert.Equal(t, "text/plain", doc.Metadata.MimeType)
}

func TestLoadMissingFileReturnsLoadingFailed(t *testing.T) {
	l := New()
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadBytesUsesProvidedMetadata(t *testing.T) {
	l := New()
	meta := entities.DocumentMetadata{Source: "inline", Title: "Inline Doc"}
	doc, err := l.LoadBytes(context.Background(), []byte("inline content"), meta)
	require.NoError(t, err)
	assert.Equal(t, "inline content", doc.Content)
	assert.Equal(t, "Inline Doc", doc.Metadata.Title)
}
