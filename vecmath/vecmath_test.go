package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSelfIsOne(t *testing.T) {
	v := []float32{1, 2, 3, 4}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
}

func TestCosineBounds(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	c := Cosine(a, b)
	assert.GreaterOrEqual(t, c, float32(-1.00001))
	assert.LessOrEqual(t, c, float32(1.00001))
}

func TestCosineDimensionMismatchReturnsZero(t *testing.T) {
	assert.Equal(t, float32(0), Cosine([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestCosineZeroMagnitudeReturnsZero(t *testing.T) {
	assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestCosineNonFiniteReturnsZero(t *testing.T) {
	nan := float32(math.NaN())
	assert.Equal(t, float32(0), Cosine([]float32{nan, 1}, []float32{1, 1}))
}

func TestNormalizeUnitLength(t *testing.T) {
	v := []float32{3, 4}
	n := Normalize(v)
	assert.InDelta(t, 1.0, Magnitude(n), 1e-6)
	// original untouched
	assert.Equal(t, float32(3), v[0])
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	n := Normalize(v)
	assert.Equal(t, v, n)
}

func TestNormalizeNonFiniteUnchanged(t *testing.T) {
	nan := float32(math.NaN())
	v := []float32{nan, 1}
	n := Normalize(v)
	assert.Equal(t, v, n)
}

func TestDotAndL2Distance(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.Equal(t, float32(0), Dot(a, b))
	assert.InDelta(t, math.Sqrt2, L2Distance(a, b), 1e-6)
}
