// Package stats aggregates per-dataset distributions: motion categories,
// sequence lengths and label counts.
package stats

import (
	"math"

	"github.com/coachme/dsview/internal/dataset"
)

// UnknownCategory counts records that lack motion_type when the first
// record has one.
const UnknownCategory = "Unknown"

// CategoryCount is one bucket of the motion_type distribution.
type CategoryCount struct {
	Category string
	Count    int
}

// Distribution is min/max/mean over a set of integer observations.
type Distribution struct {
	Count int
	Min   int64
	Max   int64
	Mean  float64
}

// Summary is the result of Compute. Nil fields mean the block has no data
// and must not be reported.
type Summary struct {
	Records        int
	Categories     []CategoryCount
	SequenceLength *Distribution
	LabelCount     *Distribution
}

// Compute aggregates statistics over ds. Which blocks are attempted is
// decided by the fields of record 0; records missing a field are skipped.
func Compute(ds *dataset.Dataset) Summary {
	s := Summary{Records: ds.Len()}
	first := ds.First()
	if first == nil {
		return s
	}

	if first.Has(dataset.FieldMotionType) {
		s.Categories = categories(ds)
	}
	if first.Has(dataset.FieldCoordinates) || first.Has(dataset.FieldOriginalSeqLen) {
		s.SequenceLength = Describe(SequenceLengths(ds))
	}
	if first.Has(dataset.FieldLabels) {
		s.LabelCount = Describe(LabelCounts(ds))
	}
	return s
}

func categories(ds *dataset.Dataset) []CategoryCount {
	var out []CategoryCount
	index := make(map[string]int)
	for _, r := range ds.Records {
		name := UnknownCategory
		if v, ok := r.Get(dataset.FieldMotionType); ok {
			name = v.Literal()
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryCount{Category: name})
		}
		out[i].Count++
	}
	return out
}

// SequenceLengths collects original_seq_len per record, falling back to
// the frame count of coordinates when it is absent or not a whole number.
func SequenceLengths(ds *dataset.Dataset) []int64 {
	var lens []int64
	for _, r := range ds.Records {
		if v, ok := r.Get(dataset.FieldOriginalSeqLen); ok {
			if n, ok := wholeNumber(v); ok {
				lens = append(lens, n)
				continue
			}
		}
		if v, ok := r.Get(dataset.FieldCoordinates); ok && v.Len() >= 0 {
			lens = append(lens, int64(v.Len()))
		}
	}
	return lens
}

// wholeNumber accepts ints and floats without a fractional part (120.0).
func wholeNumber(v dataset.Value) (int64, bool) {
	if n, ok := v.AsInt(); ok {
		return n, true
	}
	f, ok := v.AsFloat()
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// LabelCounts collects the number of labels of every record whose labels
// field is present and non-empty.
func LabelCounts(ds *dataset.Dataset) []int64 {
	var counts []int64
	for _, r := range ds.Records {
		v, ok := r.Get(dataset.FieldLabels)
		if !ok {
			continue
		}
		if n := v.Len(); n > 0 {
			counts = append(counts, int64(n))
		}
	}
	return counts
}

// Describe returns nil for no observations.
func Describe(values []int64) *Distribution {
	if len(values) == 0 {
		return nil
	}
	d := &Distribution{Count: len(values), Min: values[0], Max: values[0]}
	var sum int64
	for _, v := range values {
		d.Min = min(d.Min, v)
		d.Max = max(d.Max, v)
		sum += v
	}
	d.Mean = float64(sum) / float64(len(values))
	return d
}
