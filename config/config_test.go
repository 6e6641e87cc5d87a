package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaultsValidate(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "hybrid", cfg.Retrieval.Mode)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestLoadMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
retrieval:
  mode: mmr
  vector_weight: 0.8
store:
  backend: memory
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ragkit.yaml"), []byte(yamlContent), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mmr", cfg.Retrieval.Mode)
	assert.InDelta(t, 0.8, cfg.Retrieval.VectorWeight, 1e-9)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 60, cfg.Retrieval.RRFConstant) // untouched default
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RAGKIT_STORE_BACKEND", "hnsw")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "hnsw", cfg.Store.Backend)
}

func TestValidateRejectsOutOfRangeWeight(t *testing.T) {
	cfg := NewConfig()
	cfg.Retrieval.VectorWeight = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Retrieval.Mode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroDimensions(t *testing.T) {
	cfg := NewConfig()
	cfg.Store.Dimensions = 0
	assert.Error(t, cfg.Validate())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := NewConfig()
	dir := t.TempDir()
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, "ragkit.yaml")))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Retrieval.Mode, loaded.Retrieval.Mode)
}
