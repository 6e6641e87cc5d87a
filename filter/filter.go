// Package filter implements the metadata filter algebra used by every
// retriever and vector store to restrict candidate chunks by their
// document id, source, or custom metadata fields.
package filter

import (
	"strings"

	"github.com/Aman-CERP/ragkit/entities"
)

// Operator names the comparison or logical combinator a condition
// applies.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "notEquals"
	OpGT         Operator = "gt"
	OpLT         Operator = "lt"
	OpGE         Operator = "ge"
	OpLE         Operator = "le"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpExists     Operator = "exists"
	OpNotExists  Operator = "notExists"

	opAnd Operator = "and"
	opOr  Operator = "or"
	opNot Operator = "not"
)

// Filter is a single condition or a logical combination of sub-filters.
// A zero-value Filter (no field, no sub-filters) matches every chunk,
// satisfying "a filter over an empty condition set matches every
// chunk."
type Filter struct {
	op    Operator
	field string
	value entities.MetadataValue
	list  []entities.MetadataValue
	subs  []Filter
}

// Field builds a single-condition filter over the given field path.
func Field(field string, op Operator, value entities.MetadataValue) Filter {
	return Filter{op: op, field: field, value: value}
}

// In builds an `in` condition over a field path and value set.
func In(field string, values []entities.MetadataValue) Filter {
	return Filter{op: OpIn, field: field, list: values}
}

// NotIn builds a `notIn` condition over a field path and value set.
func NotIn(field string, values []entities.MetadataValue) Filter {
	return Filter{op: OpNotIn, field: field, list: values}
}

// Exists builds an `exists` condition: true iff the field is present
// and not null.
func Exists(field string) Filter { return Filter{op: OpExists, field: field} }

// NotExists builds a `notExists` condition, the negation of Exists.
func NotExists(field string) Filter { return Filter{op: OpNotExists, field: field} }

// And combines sub-filters; all must evaluate true. Short-circuits.
func And(subs ...Filter) Filter { return Filter{op: opAnd, subs: subs} }

// Or combines sub-filters; at least one must evaluate true. Short-circuits.
func Or(subs ...Filter) Filter { return Filter{op: opOr, subs: subs} }

// Not negates a single sub-filter.
func Not(sub Filter) Filter { return Filter{op: opNot, subs: []Filter{sub}} }

// IsEmpty reports whether the filter carries no condition and no
// sub-filters, in which case it matches every chunk.
func (f Filter) IsEmpty() bool {
	return f.op == "" && len(f.subs) == 0
}

// Match evaluates the filter against a chunk's metadata.
func (f Filter) Match(meta entities.ChunkMetadata) bool {
	if f.IsEmpty() {
		return true
	}

	switch f.op {
	case opAnd:
		for _, sub := range f.subs {
			if !sub.Match(meta) {
				return false
			}
		}
		return true
	case opOr:
		for _, sub := range f.subs {
			if sub.Match(meta) {
				return true
			}
		}
		return false
	case opNot:
		if len(f.subs) != 1 {
			return false
		}
		return !f.subs[0].Match(meta)
	case OpExists:
		v, ok := resolveField(meta, f.field)
		return ok && !v.IsNull()
	case OpNotExists:
		v, ok := resolveField(meta, f.field)
		return !ok || v.IsNull()
	case OpIn:
		v, ok := resolveField(meta, f.field)
		if !ok {
			return false
		}
		return containsValue(f.list, v)
	case OpNotIn:
		v, ok := resolveField(meta, f.field)
		if !ok {
			return true
		}
		return !containsValue(f.list, v)
	default:
		v, ok := resolveField(meta, f.field)
		if !ok {
			return false
		}
		return matchScalar(f.op, v, f.value)
	}
}

// resolveField resolves a field path against reserved chunk-metadata
// keys first, falling back to the custom map.
func resolveField(meta entities.ChunkMetadata, field string) (entities.MetadataValue, bool) {
	switch field {
	case "documentId":
		return entities.StringValue(meta.DocumentID), true
	case "source":
		if meta.Source == "" {
			return entities.MetadataValue{}, false
		}
		return entities.StringValue(meta.Source), true
	case "index":
		return entities.IntValue(int64(meta.Index)), true
	case "start":
		return entities.IntValue(int64(meta.Start)), true
	case "end":
		return entities.IntValue(int64(meta.End)), true
	default:
		if meta.Custom == nil {
			return entities.MetadataValue{}, false
		}
		v, ok := meta.Custom[field]
		return v, ok
	}
}

func containsValue(list []entities.MetadataValue, v entities.MetadataValue) bool {
	for _, candidate := range list {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}

// matchScalar evaluates a non-combinator, non-set operator. Numeric
// operators coerce int to float64; a type mismatch that numeric
// coercion cannot resolve evaluates to false.
func matchScalar(op Operator, have, want entities.MetadataValue) bool {
	switch op {
	case OpEquals:
		return have.Equal(want)
	case OpNotEquals:
		return !have.Equal(want)
	case OpGT, OpLT, OpGE, OpLE:
		hf, hok := have.AsFloat64()
		wf, wok := want.AsFloat64()
		if !hok || !wok {
			return false
		}
		switch op {
		case OpGT:
			return hf > wf
		case OpLT:
			return hf < wf
		case OpGE:
			return hf >= wf
		default:
			return hf <= wf
		}
	case OpContains, OpStartsWith, OpEndsWith:
		hs, hok := have.String()
		ws, wok := want.String()
		if !hok || !wok {
			return false
		}
		switch op {
		case OpContains:
			return strings.Contains(hs, ws)
		case OpStartsWith:
			return strings.HasPrefix(hs, ws)
		default:
			return strings.HasSuffix(hs, ws)
		}
	default:
		return false
	}
}
