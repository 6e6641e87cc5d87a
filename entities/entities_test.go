package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDReturnsDistinctValues(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestMetadataValueJSONRoundTrip(t *testing.T) {
	cases := []MetadataValue{
		NullValue(),
		BoolValue(true),
		IntValue(42),
		FloatValue(3.5),
		StringValue("hello"),
		ArrayValue([]MetadataValue{IntValue(1), StringValue("x")}),
		MapValue(map[string]MetadataValue{"a": IntValue(1), "b": NullValue()}),
	}

	for _, v := range cases {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var out MetadataValue
		require.NoError(t, json.Unmarshal(data, &out))
		assert.True(t, v.Equal(out), "round trip mismatch for %+v -> %s -> %+v", v, data, out)
	}
}

func TestMetadataValueIntBeforeFloat(t *testing.T) {
	data, err := json.Marshal(IntValue(7))
	require.NoError(t, err)

	var out MetadataValue
	require.NoError(t, json.Unmarshal(data, &out))

	_, isInt := out.Int()
	assert.True(t, isInt, "integral JSON number must decode as KindInt, got kind %d", out.Kind())
}

func TestMetadataValueNullDistinctFromAbsent(t *testing.T) {
	m := MapValue(map[string]MetadataValue{"k": NullValue()})
	mv, _ := m.Map()
	v, present := mv["k"]
	require.True(t, present)
	assert.True(t, v.IsNull())

	_, missing := mv["other"]
	assert.False(t, missing)
}

func TestCosineSimilarityBounds(t *testing.T) {
	u := Embedding{Vector: []float32{1, 2, 3}}
	v := Embedding{Vector: []float32{-1, -2, -3}}

	sim := CosineSimilarity(u, u)
	assert.InDelta(t, 1.0, sim, 1e-6)

	sim = CosineSimilarity(u, v)
	assert.InDelta(t, -1.0, sim, 1e-6)
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	u := Embedding{Vector: []float32{0, 0, 0}}
	v := Embedding{Vector: []float32{1, 2, 3}}
	assert.Equal(t, float32(0), CosineSimilarity(u, v))
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	u := Embedding{Vector: []float32{1, 2}}
	v := Embedding{Vector: []float32{1, 2, 3}}
	assert.Equal(t, float32(0), CosineSimilarity(u, v))
}

func TestChunkWithEmbeddingReturnsCopy(t *testing.T) {
	c := Chunk{ID: "c1", Content: "hello"}
	e := Embedding{Vector: []float32{1, 2}}
	c2 := c.WithEmbedding(e)

	assert.Nil(t, c.Embedding)
	require.NotNil(t, c2.Embedding)
	assert.Equal(t, e.Vector, c2.Embedding.Vector)
}

func TestSortResultsDescendingTieBreaksByID(t *testing.T) {
	results := []RetrievalResult{
		{Chunk: Chunk{ID: "b"}, Score: 1.0},
		{Chunk: Chunk{ID: "a"}, Score: 1.0},
		{Chunk: Chunk{ID: "c"}, Score: 2.0},
	}
	SortResultsDescending(results)

	require.Len(t, results, 3)
	assert.Equal(t, "c", results[0].Chunk.ID)
	assert.Equal(t, "a", results[1].Chunk.ID)
	assert.Equal(t, "b", results[2].Chunk.ID)
}
