package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}
	for _, want := range []string{"ingest", "query", "stats", "clear", "config", "serve", "version"} {
		assert.True(t, names[want], "expected subcommand %q", want)
	}
}

func TestVersionCmdPrintsString(t *testing.T) {
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ragctl")
}

func TestIngestQueryStatsClearRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ragkit.yaml"), []byte("store:\n  backend: memory\n  dimensions: 32\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("ragkit retrieves chunks ranked by cosine similarity over stored embeddings."), 0644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	ingestCmd := NewRootCmd()
	ingestBuf := &bytes.Buffer{}
	ingestCmd.SetOut(ingestBuf)
	ingestCmd.SetArgs([]string{"ingest", "doc.txt", "--no-tui"})
	require.NoError(t, ingestCmd.Execute())

	statsCmd := NewRootCmd()
	statsBuf := &bytes.Buffer{}
	statsCmd.SetOut(statsBuf)
	statsCmd.SetArgs([]string{"stats"})
	require.NoError(t, statsCmd.Execute())
	assert.Contains(t, statsBuf.String(), "chunks:")

	queryCmd := NewRootCmd()
	queryBuf := &bytes.Buffer{}
	queryCmd.SetOut(queryBuf)
	queryCmd.SetArgs([]string{"query", "how does ragkit rank chunks?", "--no-llm"})
	require.NoError(t, queryCmd.Execute())

	clearCmd := NewRootCmd()
	clearBuf := &bytes.Buffer{}
	clearCmd.SetOut(clearBuf)
	clearCmd.SetArgs([]string{"clear"})
	require.NoError(t, clearCmd.Execute())
	assert.Contains(t, clearBuf.String(), "cleared")
}
