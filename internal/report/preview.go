package report

import (
	"fmt"

	"github.com/coachme/dsview/internal/dataset"
)

const (
	labelPreviewCount = 2
	labelPreviewRunes = 80
	ellipsis          = "..."
)

// Samples prints up to n record previews in dataset order.
func (r *Reporter) Samples(ds *dataset.Dataset, n int) {
	n = max(0, min(n, ds.Len()))
	r.rule()
	r.line(r.heading, fmt.Sprintf("📋 Sample details (first %d):", n))
	r.rule()
	r.printf("\n")
	for i := 0; i < n; i++ {
		r.sample(i, ds.Records[i])
	}
}

func (r *Reporter) sample(idx int, rec *dataset.Record) {
	r.line(r.heading, fmt.Sprintf("[Sample %d]", idx+1))
	r.printf("  Video name:  %s\n", literalOr(rec, dataset.FieldVideoName, "N/A"))
	r.printf("  Motion type: %s\n", literalOr(rec, dataset.FieldMotionType, "N/A"))

	if v, ok := rec.Get(dataset.FieldCoordinates); ok {
		if t, ok := v.AsTensor(); ok {
			s := dataset.Summarize(t)
			r.printf("  Coordinates: %s (frames × features)\n", t.ShapeString())
			r.printf("               min=%.3f, max=%.3f, mean=%.3f\n", s.Min, s.Max, s.Mean)
		} else {
			r.printf("  Coordinates: %s\n", Describe(v))
		}
	}
	if v, ok := rec.Get(dataset.FieldOriginalSeqLen); ok {
		r.printf("  Original length: %s frames\n", v.Literal())
	}
	if v, ok := rec.Get(dataset.FieldCameraView); ok {
		r.printf("  Camera view: %s\n", v.Literal())
	}

	segments := Segments(rec)
	if len(segments) > 0 {
		r.printf("  Segments:\n")
		for _, f := range segments {
			r.printf("    - %s: %s\n", f.Name, f.Value.Literal())
		}
	}

	if labels, ok := rec.Get(dataset.FieldLabels); ok && labels.Len() > 0 {
		r.printf("  Labels (%d):\n", labels.Len())
		items, _ := labels.AsList()
		for i, label := range items[:min(labelPreviewCount, len(items))] {
			r.printf("    [%d] %s\n", i+1, TruncateLabel(label.Literal()))
		}
		if rest := labels.Len() - labelPreviewCount; rest > 0 {
			r.printf("    ... %d more labels\n", rest)
		}
	}
	if aug, ok := rec.Get(dataset.FieldAugmentedLabels); ok && aug.Len() > 0 {
		r.printf("  Augmented labels: %d\n", aug.Len())
	}
	r.printf("\n")
}

// Segments returns the segment-boundary fields present in rec, in display
// order.
func Segments(rec *dataset.Record) []dataset.Field {
	var out []dataset.Field
	for _, name := range dataset.SegmentFields {
		if v, ok := rec.Get(name); ok {
			out = append(out, dataset.Field{Name: name, Value: v})
		}
	}
	return out
}

// TruncateLabel shortens labels longer than 80 characters to their first 80
// characters followed by "...".
func TruncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= labelPreviewRunes {
		return label
	}
	return string(runes[:labelPreviewRunes]) + ellipsis
}

func literalOr(rec *dataset.Record, name, fallback string) string {
	if v, ok := rec.Get(name); ok {
		return v.Literal()
	}
	return fallback
}
