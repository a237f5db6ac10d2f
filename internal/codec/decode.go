// Package codec converts between document archives (JSON or YAML text)
// and dataset records. Documents are parsed with key order preserved.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/coachme/dsview/internal/dataset"
)

// ErrEmptyDocument is returned for archives with no content at all.
var ErrEmptyDocument = errors.New("empty document")

// DecodeRecords parses a document whose root is a sequence of mappings.
// Documents starting with '[' or '{' are read as JSON, anything else as YAML.
func DecodeRecords(data []byte) ([]*dataset.Record, error) {
	if len(bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))) == 0 {
		return nil, ErrEmptyDocument
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("document root must be a sequence of records, got %s", typeName(doc))
	}
	records := make([]*dataset.Record, 0, len(items))
	for i, item := range items {
		rec, err := RecordOf(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeRecord parses a single mapping document.
func DecodeRecord(data []byte) (*dataset.Record, error) {
	if len(bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))) == 0 {
		return dataset.NewRecord(), nil
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return dataset.NewRecord(), nil
	}
	return RecordOf(doc)
}

// parseDocument reads JSON with encoding/json and anything else with
// go-yaml. Flow-style YAML that is not valid JSON falls back to go-yaml.
func parseDocument(data []byte) (any, error) {
	body, isJSON := jsonBody(data)
	if !isJSON {
		return decodeYAML(data)
	}
	doc, err := decodeJSON(body)
	var syntaxErr *json.SyntaxError
	if err == nil || !errors.As(err, &syntaxErr) {
		return doc, err
	}
	if yamlDoc, yamlErr := decodeYAML(data); yamlErr == nil {
		return yamlDoc, nil
	}
	return nil, err
}

func decodeYAML(data []byte) (any, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	return doc, nil
}

// RecordOf converts a decoded mapping into a record.
func RecordOf(x any) (*dataset.Record, error) {
	v, err := ValueOf(x)
	if err != nil {
		return nil, err
	}
	rec, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", typeName(x))
	}
	return rec, nil
}

// ValueOf converts a decoded document node into a Value. Mappings tagged
// as tensors that carry data become tensors; everything else is kept as is.
func ValueOf(x any) (dataset.Value, error) {
	switch t := x.(type) {
	case nil:
		return dataset.Null(), nil
	case bool:
		return dataset.Bool(t), nil
	case int:
		return dataset.Int(int64(t)), nil
	case int64:
		return dataset.Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return dataset.Float(float64(t)), nil
		}
		return dataset.Int(int64(t)), nil
	case float32:
		return dataset.Float(float64(t)), nil
	case float64:
		return dataset.Float(t), nil
	case json.Number:
		return numberValue(t)
	case string:
		return dataset.String(t), nil
	case []byte:
		return dataset.String(string(t)), nil
	case time.Time:
		return dataset.String(t.Format(time.RFC3339Nano)), nil
	case []any:
		list := make([]dataset.Value, len(t))
		for i, item := range t {
			v, err := ValueOf(item)
			if err != nil {
				return dataset.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = v
		}
		return dataset.List(list...), nil
	case yaml.MapSlice:
		return mappingValue(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ms := make(yaml.MapSlice, 0, len(keys))
		for _, k := range keys {
			ms = append(ms, yaml.MapItem{Key: k, Value: t[k]})
		}
		return mappingValue(ms)
	}
	return dataset.Value{}, fmt.Errorf("unsupported value of type %T", x)
}

func mappingValue(ms yaml.MapSlice) (dataset.Value, error) {
	if isTensor(ms) {
		tensor, err := tensorOf(ms)
		if err != nil {
			return dataset.Value{}, err
		}
		return dataset.TensorValue(tensor), nil
	}
	rec := dataset.NewRecord()
	for _, item := range ms {
		name := fmt.Sprint(item.Key)
		v, err := ValueOf(item.Value)
		if err != nil {
			return dataset.Value{}, fmt.Errorf("%s: %w", name, err)
		}
		rec.Set(name, v)
	}
	return dataset.Map(rec), nil
}

func lookup(ms yaml.MapSlice, key string) (any, bool) {
	for _, item := range ms {
		if fmt.Sprint(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// isTensor matches {"_type": "Tensor", "data": ...}. Summaries written by
// the exporter have no data and stay plain mappings.
func isTensor(ms yaml.MapSlice) bool {
	tag, ok := lookup(ms, "_type")
	if !ok || tag != dataset.TensorTypeTag {
		return false
	}
	_, ok = lookup(ms, "data")
	return ok
}

func tensorOf(ms yaml.MapSlice) (*dataset.Tensor, error) {
	raw, _ := lookup(ms, "data")
	var data []float64
	inferred, err := flatten(raw, 0, &data)
	if err != nil {
		return nil, fmt.Errorf("tensor data: %w", err)
	}

	shape := inferred
	if rawShape, ok := lookup(ms, "shape"); ok && rawShape != nil {
		dims, ok := rawShape.([]any)
		if !ok {
			return nil, fmt.Errorf("tensor shape must be a sequence, got %s", typeName(rawShape))
		}
		shape = make([]int, len(dims))
		for i, d := range dims {
			n, err := ValueOf(d)
			if err != nil {
				return nil, err
			}
			dim, ok := n.AsInt()
			if !ok {
				return nil, fmt.Errorf("tensor shape[%d] is not an integer", i)
			}
			shape[i] = int(dim)
		}
	}

	dtype := ""
	if rawType, ok := lookup(ms, "dtype"); ok && rawType != nil {
		dtype = fmt.Sprint(rawType)
	}
	return dataset.NewTensor(shape, dtype, data)
}

// flatten appends numbers from x to out in row-major order and returns the
// shape implied by the nesting. Ragged nesting is an error.
func flatten(x any, depth int, out *[]float64) ([]int, error) {
	items, ok := x.([]any)
	if !ok {
		v, err := ValueOf(x)
		if err != nil {
			return nil, err
		}
		f, ok := v.AsFloat()
		if !ok {
			return nil, fmt.Errorf("non-numeric element %s", typeName(x))
		}
		*out = append(*out, f)
		return nil, nil
	}
	var inner []int
	for i, item := range items {
		sub, err := flatten(item, depth+1, out)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			inner = sub
		} else if !equalInts(inner, sub) {
			return nil, fmt.Errorf("ragged data at depth %d", depth)
		}
	}
	return append([]int{len(items)}, inner...), nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeName(x any) string {
	switch x.(type) {
	case nil:
		return "null"
	case []any:
		return "sequence"
	case yaml.MapSlice, map[string]any:
		return "mapping"
	case string:
		return "string"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", x)
}
