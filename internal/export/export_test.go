package export

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenByThree(t *testing.T) (*dataset.Tensor, float64, float64, float64) {
	t.Helper()
	data := make([]float64, 30)
	lo, hi, sum := 1e9, -1e9, 0.0
	for i := range data {
		data[i] = float64((i*7)%11) - 2.5
		lo = min(lo, data[i])
		hi = max(hi, data[i])
		sum += data[i]
	}
	tensor, err := dataset.NewTensor([]int{10, 3}, "float32", data)
	require.NoError(t, err)
	return tensor, lo, hi, sum / 30
}

func TestWrite_TensorSummary(t *testing.T) {
	tensor, lo, hi, mean := tenByThree(t)
	ds := &dataset.Dataset{Records: []*dataset.Record{
		dataset.NewRecord(
			dataset.Field{Name: "video_name", Value: dataset.String("squat_001.mp4")},
			dataset.Field{Name: "coordinates", Value: dataset.TensorValue(tensor)},
			dataset.Field{Name: "labels", Value: dataset.Strings("膝盖内扣 & 重心后移")},
		),
	}}

	path := filepath.Join(t.TempDir(), "out", "mirror.json")
	require.NoError(t, Write(ds, path, Config{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, "膝盖内扣 & 重心后移", "non-ASCII and HTML characters stay literal")
	assert.Contains(t, text, "\n  {\n    \"video_name\"", "two-space indentation")
	assert.Less(t, strings.Index(text, "video_name"), strings.Index(text, "coordinates"), "field order kept")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)

	coords := decoded[0]["coordinates"].(map[string]any)
	assert.Equal(t, "Tensor", coords["_type"])
	assert.Equal(t, []any{10.0, 3.0}, coords["shape"])
	assert.Equal(t, "float32", coords["dtype"])
	assert.InDelta(t, lo, coords["min"], 1e-6)
	assert.InDelta(t, hi, coords["max"], 1e-6)
	assert.InDelta(t, mean, coords["mean"], 1e-6)
	assert.NotContains(t, coords, "data")
	assert.Equal(t, []any{"膝盖内扣 & 重心后移"}, decoded[0]["labels"])
}

func TestBuild_DoesNotMutateSource(t *testing.T) {
	tensor, _, _, _ := tenByThree(t)
	rec := dataset.NewRecord(dataset.Field{Name: "coordinates", Value: dataset.TensorValue(tensor)})
	ds := &dataset.Dataset{Records: []*dataset.Record{rec}}

	mirror := Build(ds, Config{})
	require.Len(t, mirror, 1)

	_, ok := rec.Tensor("coordinates")
	assert.True(t, ok, "source record still holds the tensor")
	_, ok = mirror[0].Tensor("coordinates")
	assert.False(t, ok, "mirror holds a summary map instead")
}

func TestBuild_NestedTensorsAndEmptyTensor(t *testing.T) {
	empty, err := dataset.NewTensor([]int{0}, "float64", nil)
	require.NoError(t, err)
	rec := dataset.NewRecord(dataset.Field{
		Name:  "extra",
		Value: dataset.List(dataset.TensorValue(empty)),
	})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(&dataset.Dataset{Records: []*dataset.Record{rec}}, Config{})))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	summary := decoded[0]["extra"].([]any)[0].(map[string]any)
	assert.Equal(t, "Tensor", summary["_type"])
	assert.Nil(t, summary["min"])
	assert.Nil(t, summary["mean"])
}

func TestWrite_Gzip(t *testing.T) {
	ds := &dataset.Dataset{Records: []*dataset.Record{
		dataset.NewRecord(dataset.Field{Name: "motion_type", Value: dataset.String("squat")}),
	}}
	path := filepath.Join(t.TempDir(), "mirror.json.gz")

	require.NoError(t, Write(ds, path, Config{}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(gz).Decode(&decoded))
	assert.Equal(t, "squat", decoded[0]["motion_type"])
}

func TestWrite_EmptyDatasetIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(&dataset.Dataset{}, Config{})))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWrite_ProgressBar(t *testing.T) {
	ds := &dataset.Dataset{Records: []*dataset.Record{dataset.NewRecord(), dataset.NewRecord()}}

	var progress bytes.Buffer
	Build(ds, Config{Progress: true, ProgressOut: &progress})
	assert.Contains(t, progress.String(), "export")
}

func TestWrite_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Write(&dataset.Dataset{}, filepath.Join(blocker, "out.json"), Config{})
	require.Error(t, err)
}
