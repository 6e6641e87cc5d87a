package logging

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogDirUnderHomeDotRagctl(t *testing.T) {
	dir := DefaultLogDir()
	assert.True(t, strings.Contains(dir, ".ragctl"))
	assert.True(t, strings.Contains(dir, "logs"))
}

func TestDefaultLogPathEndsInRagctlLog(t *testing.T) {
	assert.Equal(t, "ragctl.log", filepath.Base(DefaultLogPath()))
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
}

func TestDebugConfigOverridesLevel(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, "debug", cfg.Level)
}

func TestSetupWritesToRotatingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Level:         "debug",
		FilePath:      filepath.Join(dir, "test.log"),
		MaxSizeMB:     1,
		MaxFiles:      3,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hello", "key", "value")

	data, err := filepath.Glob(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	require.Len(t, data, 1)
}

func TestFindLogFileMissingReturnsError(t *testing.T) {
	_, err := FindLogFile(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}
