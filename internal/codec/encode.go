package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/coachme/dsview/internal/dataset"
)

// EncodeJSON writes records as a JSON archive. Tensors keep their data.
func EncodeJSON(w io.Writer, records []*dataset.Record) error {
	if records == nil {
		records = []*dataset.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// yamlTensor is the YAML form of a tensor; numeric sequences are written
// in flow style to keep archives compact.
type yamlTensor struct {
	Type  string      `yaml:"_type"`
	Shape []int       `yaml:"shape,flow"`
	DType string      `yaml:"dtype"`
	Data  []yamlFloat `yaml:"data,flow"`
}

// yamlFloat is written with a decimal point in the mantissa (1.0e-07, 2.0)
// so YAML 1.1 resolvers read it back as a float.
type yamlFloat float64

func (f yamlFloat) MarshalYAML() ([]byte, error) {
	return []byte(formatYAMLFloat(float64(f))), nil
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	mantissa, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	if hasExp {
		return mantissa + "e" + exp
	}
	return mantissa
}

// EncodeYAML writes records as a YAML archive with field order preserved.
func EncodeYAML(w io.Writer, records []*dataset.Record) error {
	doc := make([]any, len(records))
	for i, rec := range records {
		doc[i] = yamlRecord(rec)
	}
	b, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func yamlRecord(rec *dataset.Record) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, rec.Len())
	for _, f := range rec.Fields() {
		ms = append(ms, yaml.MapItem{Key: f.Name, Value: yamlValue(f.Value)})
	}
	return ms
}

func yamlValue(v dataset.Value) any {
	switch v.Kind() {
	case dataset.KindTensor:
		t, _ := v.AsTensor()
		data := make([]yamlFloat, len(t.Data))
		for i, x := range t.Data {
			data[i] = yamlFloat(x)
		}
		shape := t.Shape
		if shape == nil {
			shape = []int{}
		}
		return yamlTensor{Type: dataset.TensorTypeTag, Shape: shape, DType: t.DType, Data: data}
	case dataset.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = yamlValue(item)
		}
		return out
	case dataset.KindMap:
		r, _ := v.AsMap()
		return yamlRecord(r)
	case dataset.KindFloat:
		f, _ := v.AsFloat()
		return yamlFloat(f)
	}
	return v.Interface()
}
