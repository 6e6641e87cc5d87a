package ragerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := New(KindNoResultsFound, "no chunks matched")
	assert.True(t, errors.Is(err, Sentinel(KindNoResultsFound)))
	assert.False(t, errors.Is(err, Sentinel(KindSearchFailed)))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := Wrap(KindVectorStoreConnectionFailed, "connect failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connect failed")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindSearchFailed, "x", nil))
}

func TestGetKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(KindEmbeddingFailed, "provider down"))
	kind, ok := GetKind(err)
	assert.True(t, ok)
	assert.Equal(t, KindEmbeddingFailed, kind)
}

func TestCategoryConstructorsSetKind(t *testing.T) {
	cause := fmt.Errorf("boom")
	assert.Equal(t, KindLoadingFailed, Loading("x", cause).Kind)
	assert.Equal(t, KindChunkingFailed, Chunking("x", cause).Kind)
	assert.Equal(t, KindEmbeddingFailed, Embedding("x", cause).Kind)
	assert.Equal(t, KindVectorStoreUnavailable, Store("x", cause).Kind)
	assert.Equal(t, KindRetrievalFailed, Retrieval("x", cause).Kind)
	assert.Equal(t, KindGenerationFailed, Generation("x", cause).Kind)
	assert.Equal(t, KindInvalidConfiguration, Config("x", cause).Kind)
}

func TestIsRetryableByKind(t *testing.T) {
	assert.True(t, IsRetryable(New(KindRateLimited, "slow down")))
	assert.True(t, IsRetryable(New(KindVectorStoreConnectionFailed, "dropped")))
	assert.False(t, IsRetryable(New(KindInvalidConfiguration, "bad yaml")))
	assert.False(t, IsRetryable(nil))
}

func TestConfigErrorIsNeverRetryableEvenWithoutCause(t *testing.T) {
	err := Config("missing field", nil)
	assert.False(t, err.Retryable)
	assert.Equal(t, KindInvalidConfiguration, err.Kind)
}
