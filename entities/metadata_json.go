package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

func appendInt(buf []byte, v int64) []byte {
	return append(buf, []byte(fmt.Sprintf("%d", v))...)
}

func appendFloat(buf []byte, v float64) []byte {
	return append(buf, []byte(fmt.Sprintf("%g", v))...)
}

func marshalJSONString(s string) []byte {
	data, _ := json.Marshal(s)
	return data
}

func marshalJSONArray(arr []MetadataValue) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalJSONMap emits keys in sorted order for deterministic output,
// matching the in-memory store's "pretty printing and sorted keys"
// persistence contract.
func marshalJSONMap(m map[string]MetadataValue) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalJSONString(k))
		buf.WriteByte(':')
		data, err := m[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeJSONValue(data []byte) (MetadataValue, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return MetadataValue{}, err
	}
	return fromGoValue(raw)
}

func fromGoValue(raw interface{}) (MetadataValue, error) {
	switch t := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return MetadataValue{}, err
		}
		return FloatValue(f), nil
	case string:
		return StringValue(t), nil
	case []interface{}:
		vals := make([]MetadataValue, 0, len(t))
		for _, elem := range t {
			v, err := fromGoValue(elem)
			if err != nil {
				return MetadataValue{}, err
			}
			vals = append(vals, v)
		}
		return ArrayValue(vals), nil
	case map[string]interface{}:
		vals := make(map[string]MetadataValue, len(t))
		for k, elem := range t {
			v, err := fromGoValue(elem)
			if err != nil {
				return MetadataValue{}, err
			}
			vals[k] = v
		}
		return MapValue(vals), nil
	default:
		return MetadataValue{}, fmt.Errorf("metadata: unsupported JSON value %T", raw)
	}
}
