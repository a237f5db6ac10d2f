// Package export writes the JSON mirror of a dataset, with every tensor
// replaced by its summary.
package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"

	"github.com/coachme/dsview/internal/dataset"
)

// Config controls how the mirror is written.
type Config struct {
	// Compress gzips the output. Paths ending in .gz are always compressed.
	Compress bool
	// Progress draws a progress bar on ProgressOut while building.
	Progress    bool
	ProgressOut io.Writer
}

const progressTemplate = `{{ string . "prefix" }} {{counters . }} {{bar . }} {{percent . }} {{etime . "%s elapsed"}}`

// Build returns the mirror of ds: new records whose tensor values, at any
// depth, are replaced by summary maps. ds is not modified.
func Build(ds *dataset.Dataset, cfg Config) []*dataset.Record {
	var bar *pb.ProgressBar
	if cfg.Progress && ds.Len() > 0 {
		bar = pb.ProgressBarTemplate(progressTemplate).New(ds.Len())
		bar.Set("prefix", "export")
		if cfg.ProgressOut != nil {
			bar.SetWriter(cfg.ProgressOut)
		}
		bar.Start()
		defer bar.Finish()
	}

	out := make([]*dataset.Record, 0, ds.Len())
	for _, rec := range ds.Records {
		out = append(out, mirrorRecord(rec))
		if bar != nil {
			bar.Increment()
		}
	}
	return out
}

func mirrorRecord(rec *dataset.Record) *dataset.Record {
	m := dataset.NewRecord()
	for _, f := range rec.Fields() {
		m.Set(f.Name, mirrorValue(f.Value))
	}
	return m
}

func mirrorValue(v dataset.Value) dataset.Value {
	switch v.Kind() {
	case dataset.KindTensor:
		t, _ := v.AsTensor()
		return dataset.Map(SummaryRecord(dataset.Summarize(t)))
	case dataset.KindList:
		items, _ := v.AsList()
		out := make([]dataset.Value, len(items))
		for i, item := range items {
			out[i] = mirrorValue(item)
		}
		return dataset.List(out...)
	case dataset.KindMap:
		r, _ := v.AsMap()
		return dataset.Map(mirrorRecord(r))
	}
	return v
}

// SummaryRecord converts a tensor summary into an ordered record. NaN
// reductions of empty tensors become null.
func SummaryRecord(s dataset.TensorSummary) *dataset.Record {
	shape := make([]dataset.Value, len(s.Shape))
	for i, d := range s.Shape {
		shape[i] = dataset.Int(int64(d))
	}
	return dataset.NewRecord(
		dataset.Field{Name: "_type", Value: dataset.String(s.Type)},
		dataset.Field{Name: "shape", Value: dataset.List(shape...)},
		dataset.Field{Name: "dtype", Value: dataset.String(s.DType)},
		dataset.Field{Name: "min", Value: finite(s.Min)},
		dataset.Field{Name: "max", Value: finite(s.Max)},
		dataset.Field{Name: "mean", Value: finite(s.Mean)},
	)
}

func finite(f float64) dataset.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dataset.Null()
	}
	return dataset.Float(f)
}

// Encode writes records as indented JSON with non-ASCII and HTML
// characters kept literal.
func Encode(w io.Writer, records []*dataset.Record) error {
	if records == nil {
		records = []*dataset.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Write builds the mirror of ds and writes it to path, creating parent
// directories as needed.
func Write(ds *dataset.Dataset, path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	records := Build(ds, cfg)
	if cfg.Compress || strings.HasSuffix(path, ".gz") {
		gzWriter := gzip.NewWriter(f)
		if err := Encode(gzWriter, records); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := gzWriter.Close(); err != nil {
			return fmt.Errorf("failed to finish %s: %w", path, err)
		}
	} else if err := Encode(f, records); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
