package convert

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/coachme/dsview/internal/codec"
	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/model"
)

// columnOrder is the field order used for rows written without FieldOrder.
var columnOrder = append([]string{
	dataset.FieldVideoName,
	dataset.FieldMotionType,
	dataset.FieldCoordinates,
	dataset.FieldOriginalSeqLen,
	dataset.FieldCameraView,
}, append(append([]string{}, dataset.SegmentFields...),
	dataset.FieldLabels,
	dataset.FieldAugmentedLabels,
)...)

// decodeFloats unpacks little-endian float64 data.
func decodeFloats(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("tensor data is %d bytes, not a multiple of 8", len(b))
	}
	data := make([]float64, len(b)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return data, nil
}

// SampleToRecord converts a GORM model.Sample back to a dataset record,
// restoring the stored field order.
func SampleToRecord(s model.Sample) (*dataset.Record, error) {
	values := make(map[string]dataset.Value)
	var extraOrder []string

	for _, name := range []string{dataset.FieldVideoName, dataset.FieldMotionType, dataset.FieldCameraView} {
		if col := stringColumn(&s, name); *col != nil {
			values[name] = dataset.String(**col)
		}
	}
	for _, name := range append([]string{dataset.FieldOriginalSeqLen}, dataset.SegmentFields...) {
		if col := intColumn(&s, name); *col != nil {
			values[name] = dataset.Int(**col)
		}
	}
	for _, name := range []string{dataset.FieldLabels, dataset.FieldAugmentedLabels} {
		col := labelColumn(&s, name)
		if len(*col) == 0 {
			continue
		}
		var labels []string
		if err := json.Unmarshal(*col, &labels); err != nil {
			return nil, fmt.Errorf("sample %d %s: %w", s.Position, name, err)
		}
		values[name] = dataset.Strings(labels...)
	}
	for _, st := range s.Tensors {
		var shape []int
		if err := json.Unmarshal(st.Shape, &shape); err != nil {
			return nil, fmt.Errorf("sample %d tensor %s shape: %w", s.Position, st.Field, err)
		}
		data, err := decodeFloats(st.Data)
		if err != nil {
			return nil, fmt.Errorf("sample %d tensor %s: %w", s.Position, st.Field, err)
		}
		t, err := dataset.NewTensor(shape, st.DType, data)
		if err != nil {
			return nil, fmt.Errorf("sample %d tensor %s: %w", s.Position, st.Field, err)
		}
		values[st.Field] = dataset.TensorValue(t)
	}
	if len(s.Extra) > 0 {
		extra, err := codec.DecodeRecord(s.Extra)
		if err != nil {
			return nil, fmt.Errorf("sample %d extra fields: %w", s.Position, err)
		}
		for _, f := range extra.Fields() {
			values[f.Name] = f.Value
			extraOrder = append(extraOrder, f.Name)
		}
	}

	var order []string
	if len(s.FieldOrder) > 0 {
		if err := json.Unmarshal(s.FieldOrder, &order); err != nil {
			return nil, fmt.Errorf("sample %d field order: %w", s.Position, err)
		}
	}
	order = append(order, columnOrder...)
	order = append(order, extraOrder...)
	for _, st := range s.Tensors {
		order = append(order, st.Field)
	}

	rec := dataset.NewRecord()
	for _, name := range order {
		if v, ok := values[name]; ok && !rec.Has(name) {
			rec.Set(name, v)
		}
	}
	return rec, nil
}
