package report

import (
	"fmt"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/stats"
)

// Schema prints the overview and the field list of record 0. It returns
// false for an empty dataset, after printing the empty notice; callers
// must then skip every further section.
func (r *Reporter) Schema(ds *dataset.Dataset) bool {
	r.line(r.heading, "📊 Overview:")
	format := ds.Format
	if format == "" {
		format = "unknown"
	}
	r.printf("   Container:   list (%s archive)\n", format)
	if o := ds.Origin; o != nil && o.Name != "" {
		r.printf("   Archive:     %s (converted from %s)\n", o.Name, originType(o))
	}
	r.printf("   Samples:     %d\n", ds.Len())
	first := ds.First()
	if first == nil {
		r.printf("   Sample type: N/A\n\n")
		r.line(r.warn, "⚠️  Dataset is empty!")
		return false
	}
	r.printf("   Sample type: record (%d fields)\n\n", first.Len())

	r.line(r.heading, "🔑 Fields:")
	for _, f := range first.Fields() {
		r.printf("   - %-*s: %s\n", fieldWidth, f.Name, Describe(f.Value))
	}
	r.printf("\n")
	return true
}

func originType(o *dataset.Origin) string {
	if o.SourceType == "" {
		return "unknown"
	}
	return o.SourceType
}

// Describe returns the kind descriptor shown next to a field name.
func Describe(v dataset.Value) string {
	switch v.Kind() {
	case dataset.KindTensor:
		t, _ := v.AsTensor()
		return fmt.Sprintf("Tensor %s (%s)", t.ShapeString(), t.DType)
	case dataset.KindList:
		return fmt.Sprintf("List (length: %d)", v.Len())
	case dataset.KindInt, dataset.KindFloat, dataset.KindBool:
		return fmt.Sprintf("%s = %s", v.Kind(), v.Literal())
	default:
		return v.Kind().String()
	}
}

// Statistics prints every statistics block that has data.
func (r *Reporter) Statistics(s stats.Summary) {
	r.line(r.heading, "📈 Statistics:")
	if len(s.Categories) > 0 {
		r.printf("   Motion types:\n")
		for _, c := range s.Categories {
			r.printf("      - %s: %d samples\n", c.Category, c.Count)
		}
	}
	if d := s.SequenceLength; d != nil {
		r.printf("   Sequence length:\n")
		r.printf("      - min:  %d frames\n", d.Min)
		r.printf("      - max:  %d frames\n", d.Max)
		r.printf("      - mean: %.1f frames\n", d.Mean)
	}
	if d := s.LabelCount; d != nil {
		r.printf("   Labels per sample:\n")
		r.printf("      - min:  %d\n", d.Min)
		r.printf("      - max:  %d\n", d.Max)
		r.printf("      - mean: %.1f\n", d.Mean)
	}
	r.printf("\n")
}
