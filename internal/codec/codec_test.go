package codec

import (
	"bytes"
	"math"
	"testing"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonArchive = `[
  {
    "video_name": "squat_001.mp4",
    "motion_type": "深蹲",
    "coordinates": {"_type": "Tensor", "shape": [2, 3], "dtype": "float32", "data": [1, 2, 3, 4.5, 5, 6]},
    "original_seq_len": 2,
    "score": 1.0,
    "labels": ["keep knees out", "chest up"],
    "meta": {"z": 1, "a": null}
  },
  {"camera_view": "side"}
]`

func TestDecodeRecords_JSON(t *testing.T) {
	records, err := DecodeRecords([]byte(jsonArchive))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, []string{"video_name", "motion_type", "coordinates", "original_seq_len", "score", "labels", "meta"}, first.Keys())

	mt, ok := first.String("motion_type")
	require.True(t, ok)
	assert.Equal(t, "深蹲", mt)

	tensor, ok := first.Tensor("coordinates")
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, tensor.Shape)
	assert.Equal(t, "float32", tensor.DType)
	assert.Equal(t, []float64{1, 2, 3, 4.5, 5, 6}, tensor.Data)

	n, ok := first.Int("original_seq_len")
	require.True(t, ok)
	assert.Equal(t, int64(2), n)

	score, ok := first.Get("score")
	require.True(t, ok)
	assert.Equal(t, dataset.KindFloat, score.Kind())

	labels, ok := first.Strings("labels")
	require.True(t, ok)
	assert.Equal(t, []string{"keep knees out", "chest up"}, labels)

	meta, ok := first.Get("meta")
	require.True(t, ok)
	m, ok := meta.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, m.Keys())
}

func TestDecodeRecords_NestedDataInfersShape(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"coordinates": {"_type": "Tensor", "data": [[1, 2], [3, 4], [5, 6]]}}]`))
	require.NoError(t, err)

	tensor, ok := records[0].Tensor("coordinates")
	require.True(t, ok)
	assert.Equal(t, []int{3, 2}, tensor.Shape)
	assert.Equal(t, "float32", tensor.DType)
}

func TestDecodeRecords_SummaryStaysMapping(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"coordinates": {"_type": "Tensor", "shape": [2], "min": 0, "max": 1}}]`))
	require.NoError(t, err)

	_, ok := records[0].Tensor("coordinates")
	assert.False(t, ok)
	v, _ := records[0].Get("coordinates")
	assert.Equal(t, dataset.KindMap, v.Kind())
}

func TestDecodeRecords_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"root mapping", `{"a": 1}`, "sequence of records"},
		{"scalar record", `[1]`, "record 0"},
		{"shape mismatch", `[{"c": {"_type": "Tensor", "shape": [4], "data": [1, 2]}}]`, "needs 4 elements"},
		{"ragged", `[{"c": {"_type": "Tensor", "data": [[1, 2], [3]]}}]`, "ragged"},
		{"non numeric", `[{"c": {"_type": "Tensor", "data": ["x"]}}]`, "non-numeric"},
		{"syntax", `[{"a": `, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeRecords_EmptySequence(t *testing.T) {
	records, err := DecodeRecords([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	records, err := DecodeRecords([]byte(jsonArchive))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, records))

	again, err := DecodeRecords(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, records[0].Keys(), again[0].Keys())

	score, _ := again[0].Get("score")
	assert.Equal(t, dataset.KindFloat, score.Kind(), "whole floats survive the round trip")

	tensor, ok := again[0].Tensor("coordinates")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4.5, 5, 6}, tensor.Data)
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	records, err := DecodeRecords([]byte(jsonArchive))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, records))
	assert.Contains(t, buf.String(), "shape: [2, 3]")

	again, err := DecodeRecords(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, records[0].Keys(), again[0].Keys())

	mt, _ := again[0].String("motion_type")
	assert.Equal(t, "深蹲", mt)

	tensor, ok := again[0].Tensor("coordinates")
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, tensor.Shape)
	assert.Equal(t, []float64{1, 2, 3, 4.5, 5, 6}, tensor.Data)

	view, _ := again[1].String("camera_view")
	assert.Equal(t, "side", view)
}

func TestDecodeRecord_Single(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"b": 1, "a": [true]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, rec.Keys())

	rec, err = DecodeRecord(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Len())
}

func TestDecodeRecords_ExponentNumbers(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"1e-05", 1e-05},
		{"-1e-05", -1e-05},
		{"1e+20", 1e+20},
		{"1e5", 1e5},
		{"1E5", 1e5},
		{"2.5E-3", 2.5e-3},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			doc := `[{"f": ` + tt.text + `, "c": {"_type": "Tensor", "shape": [2], "data": [` + tt.text + `, 1]}}]`
			records, err := DecodeRecords([]byte(doc))
			require.NoError(t, err)

			f, ok := records[0].Get("f")
			require.True(t, ok)
			assert.Equal(t, dataset.KindFloat, f.Kind())
			got, _ := f.AsFloat()
			assert.Equal(t, tt.want, got)

			tensor, ok := records[0].Tensor("c")
			require.True(t, ok)
			assert.Equal(t, []float64{tt.want, 1}, tensor.Data)
		})
	}
}

func TestDecodeRecords_JSONIntegersStayInts(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"n": 120, "neg": -3, "f": 120.0}]`))
	require.NoError(t, err)

	n, ok := records[0].Int("n")
	require.True(t, ok)
	assert.Equal(t, int64(120), n)
	neg, ok := records[0].Int("neg")
	require.True(t, ok)
	assert.Equal(t, int64(-3), neg)

	f, _ := records[0].Get("f")
	assert.Equal(t, dataset.KindFloat, f.Kind())
}

func TestDecodeRecords_ByteOrderMark(t *testing.T) {
	records, err := DecodeRecords([]byte("\xef\xbb\xbf" + `[{"a": 1e-05}]`))
	require.NoError(t, err)
	v, _ := records[0].Get("a")
	assert.Equal(t, dataset.KindFloat, v.Kind())
}

func TestDecodeRecords_YAMLFlowDocument(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{video_name: a.mp4, n: 2}]`))
	require.NoError(t, err)
	name, ok := records[0].String("video_name")
	require.True(t, ok)
	assert.Equal(t, "a.mp4", name)
}

func TestDecodeRecords_TrailingData(t *testing.T) {
	_, err := DecodeRecords([]byte(`[{"a": 1}] [{"b": 2}]`))
	require.Error(t, err)
}

func TestRoundTrip_SmallAndLargeFloats(t *testing.T) {
	tensor, err := dataset.NewTensor([]int{3}, "float32", []float64{0.5, 1e-7, 2})
	require.NoError(t, err)
	records := []*dataset.Record{dataset.NewRecord(
		dataset.Field{Name: "coordinates", Value: dataset.TensorValue(tensor)},
		dataset.Field{Name: "tiny", Value: dataset.Float(1e-7)},
		dataset.Field{Name: "huge", Value: dataset.Float(1e+20)},
	)}

	encoders := map[string]func(*bytes.Buffer) error{
		"json": func(b *bytes.Buffer) error { return EncodeJSON(b, records) },
		"yaml": func(b *bytes.Buffer) error { return EncodeYAML(b, records) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			again, err := DecodeRecords(buf.Bytes())
			require.NoError(t, err)

			got, ok := again[0].Tensor("coordinates")
			require.True(t, ok)
			assert.Equal(t, []float64{0.5, 1e-7, 2}, got.Data)

			for field, want := range map[string]float64{"tiny": 1e-7, "huge": 1e+20} {
				v, _ := again[0].Get(field)
				assert.Equal(t, dataset.KindFloat, v.Kind(), field)
				f, _ := v.AsFloat()
				assert.Equal(t, want, f, field)
			}
		})
	}
}

func TestFormatYAMLFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "2.0"},
		{4.5, "4.5"},
		{1e-7, "1.0e-07"},
		{-2.5e+20, "-2.5e+20"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
		{math.NaN(), ".nan"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatYAMLFloat(tt.in))
	}
}
