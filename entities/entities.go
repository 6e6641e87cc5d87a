// Package entities defines the core data model shared across the
// retrieval engine: documents, chunks, embeddings, metadata values,
// and retrieval results. Types here are immutable after construction;
// mutator-shaped methods return copies.
package entities

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// NewID generates an opaque random identifier for callers that don't
// supply their own document or chunk ID.
func NewID() string {
	return uuid.NewString()
}

// ValueKind tags the concrete type carried by a MetadataValue.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindMap
)

// MetadataValue is a tagged union over the JSON-codable value types a
// chunk's custom metadata may carry. Null is distinct from absent: a
// key present in a map with a KindNull value differs from the key not
// being present at all.
type MetadataValue struct {
	kind    ValueKind
	boolV   bool
	intV    int64
	floatV  float64
	strV    string
	arrV    []MetadataValue
	mapV    map[string]MetadataValue
}

func NullValue() MetadataValue                       { return MetadataValue{kind: KindNull} }
func BoolValue(b bool) MetadataValue                  { return MetadataValue{kind: KindBool, boolV: b} }
func IntValue(i int64) MetadataValue                  { return MetadataValue{kind: KindInt, intV: i} }
func FloatValue(f float64) MetadataValue              { return MetadataValue{kind: KindFloat, floatV: f} }
func StringValue(s string) MetadataValue              { return MetadataValue{kind: KindString, strV: s} }
func ArrayValue(v []MetadataValue) MetadataValue      { return MetadataValue{kind: KindArray, arrV: v} }
func MapValue(v map[string]MetadataValue) MetadataValue { return MetadataValue{kind: KindMap, mapV: v} }

func (v MetadataValue) Kind() ValueKind { return v.kind }
func (v MetadataValue) IsNull() bool    { return v.kind == KindNull }

func (v MetadataValue) Bool() (bool, bool)     { return v.boolV, v.kind == KindBool }
func (v MetadataValue) Int() (int64, bool)     { return v.intV, v.kind == KindInt }
func (v MetadataValue) Float() (float64, bool) { return v.floatV, v.kind == KindFloat }
func (v MetadataValue) String() (string, bool) { return v.strV, v.kind == KindString }
func (v MetadataValue) Array() ([]MetadataValue, bool) {
	return v.arrV, v.kind == KindArray
}
func (v MetadataValue) Map() (map[string]MetadataValue, bool) {
	return v.mapV, v.kind == KindMap
}

// AsFloat64 coerces numeric kinds (int, float) to float64. The second
// return value is false for any other kind.
func (v MetadataValue) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.intV), true
	case KindFloat:
		return v.floatV, true
	default:
		return 0, false
	}
}

// Equal reports whether two tagged-union values are equal. Arrays
// compare element-wise in order; maps compare by key set and value.
func (v MetadataValue) Equal(other MetadataValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolV == other.boolV
	case KindInt:
		return v.intV == other.intV
	case KindFloat:
		return v.floatV == other.floatV
	case KindString:
		return v.strV == other.strV
	case KindArray:
		if len(v.arrV) != len(other.arrV) {
			return false
		}
		for i := range v.arrV {
			if !v.arrV[i].Equal(other.arrV[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.mapV) != len(other.mapV) {
			return false
		}
		for k, mv := range v.mapV {
			ov, ok := other.mapV[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the value the way a tagged union must: integers
// are tried before floats so an integral value round-trips without
// losing precision, and null is emitted distinctly from an omitted
// field.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.boolV {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindInt:
		return appendInt(nil, v.intV), nil
	case KindFloat:
		return appendFloat(nil, v.floatV), nil
	case KindString:
		return marshalJSONString(v.strV), nil
	case KindArray:
		return marshalJSONArray(v.arrV)
	case KindMap:
		return marshalJSONMap(v.mapV)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a tagged union from JSON, preferring int64 for
// any number with no fractional part or exponent so integers survive
// the round trip exactly.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	decoded, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Document is an immutable piece of source content and its metadata.
type Document struct {
	ID        string
	Content   string
	Metadata  DocumentMetadata
	CreatedAt time.Time
}

// DocumentMetadata carries the well-known document fields plus an open
// custom map of MetadataValue.
type DocumentMetadata struct {
	Source   string
	Title    string
	Author   string
	URL      string
	MimeType string
	Custom   map[string]MetadataValue
}

// ChunkMetadata links a chunk back to its originating document and
// position. Invariants: 0 <= Start <= End; within a document, Index
// values form a contiguous sequence without duplicates (enforced by
// the chunker, not by this type).
type ChunkMetadata struct {
	DocumentID string
	Index      int
	Start      int
	End        int
	Source     string
	Custom     map[string]MetadataValue
}

// Chunk is an immutable retrievable unit of content.
type Chunk struct {
	ID        string
	Content   string
	Metadata  ChunkMetadata
	Embedding *Embedding
}

// WithEmbedding returns a new Chunk carrying the given embedding,
// leaving the receiver untouched.
func (c Chunk) WithEmbedding(e Embedding) Chunk {
	c.Embedding = &e
	return c
}

// CosineEpsilon is the minimum magnitude below which cosine similarity
// is defined as 0 rather than dividing by a near-zero value.
const CosineEpsilon = 1e-8

// Embedding is a dense fixed-length float vector.
type Embedding struct {
	Vector []float32
	Model  string
}

// Dimensions returns the embedding's vector length.
func (e Embedding) Dimensions() int { return len(e.Vector) }

// Valid reports whether the embedding satisfies its invariants:
// dimensions >= 1 and every component finite.
func (e Embedding) Valid() bool {
	if len(e.Vector) < 1 {
		return false
	}
	for _, v := range e.Vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// CosineSimilarity computes the standard cosine similarity between two
// embeddings. If either magnitude is below CosineEpsilon, the result
// is 0 rather than an unstable ratio.
func CosineSimilarity(a, b Embedding) float32 {
	if len(a.Vector) != len(b.Vector) || len(a.Vector) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a.Vector {
		av := float64(a.Vector[i])
		bv := float64(b.Vector[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}
	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA < CosineEpsilon || magB < CosineEpsilon {
		return 0
	}
	return float32(dot / (magA * magB))
}

// RetrievalResult is the ephemeral outcome of a single retrieved chunk,
// with its score and any retriever-specific side metadata (e.g. fusion
// method, matched child count).
type RetrievalResult struct {
	Chunk    Chunk
	Score    float64
	Metadata map[string]string
}

// SortResultsDescending sorts results by score, descending, breaking
// ties deterministically by chunk ID.
func SortResultsDescending(results []RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
