// Package convert provides functions to convert between GORM models and dataset records
package convert

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/model"
	"gorm.io/datatypes"
)

// stringColumn returns the typed column for a well-known string field.
func stringColumn(s *model.Sample, name string) **string {
	switch name {
	case dataset.FieldVideoName:
		return &s.VideoName
	case dataset.FieldMotionType:
		return &s.MotionType
	case dataset.FieldCameraView:
		return &s.CameraView
	}
	return nil
}

// intColumn returns the typed column for a well-known integer field.
func intColumn(s *model.Sample, name string) **int64 {
	switch name {
	case dataset.FieldOriginalSeqLen:
		return &s.OriginalSeqLen
	case "aligned_start_frame":
		return &s.AlignedStartFrame
	case "aligned_end_frame":
		return &s.AlignedEndFrame
	case "aligned_seq_len":
		return &s.AlignedSeqLen
	case "error_start_frame":
		return &s.ErrorStartFrame
	case "error_end_frame":
		return &s.ErrorEndFrame
	case "error_seq_len":
		return &s.ErrorSeqLen
	case "gt_start_frame":
		return &s.GtStartFrame
	case "gt_end_frame":
		return &s.GtEndFrame
	case "gt_seq_len":
		return &s.GtSeqLen
	}
	return nil
}

// labelColumn returns the JSON column for a string-list field.
func labelColumn(s *model.Sample, name string) *datatypes.JSON {
	switch name {
	case dataset.FieldLabels:
		return &s.Labels
	case dataset.FieldAugmentedLabels:
		return &s.AugmentedLabels
	}
	return nil
}

// encodeFloats packs data as little-endian float64.
func encodeFloats(data []float64) []byte {
	buf := make([]byte, 8*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// RecordToSample converts a dataset record to a GORM model.Sample.
// position is the record's index in the dataset.
func RecordToSample(rec *dataset.Record, position int) (model.Sample, error) {
	s := model.Sample{Position: position}

	order, err := json.Marshal(rec.Keys())
	if err != nil {
		return s, err
	}
	s.FieldOrder = datatypes.JSON(order)

	extra := dataset.NewRecord()
	for _, f := range rec.Fields() {
		if col := stringColumn(&s, f.Name); col != nil {
			if v, ok := f.Value.AsString(); ok {
				*col = &v
				continue
			}
		}
		if col := intColumn(&s, f.Name); col != nil {
			if v, ok := f.Value.AsInt(); ok {
				*col = &v
				continue
			}
		}
		if col := labelColumn(&s, f.Name); col != nil {
			if labels, ok := rec.Strings(f.Name); ok {
				if labels == nil {
					labels = []string{}
				}
				data, err := json.Marshal(labels)
				if err != nil {
					return s, err
				}
				*col = datatypes.JSON(data)
				continue
			}
		}
		if t, ok := f.Value.AsTensor(); ok {
			shape, err := json.Marshal(t.Shape)
			if err != nil {
				return s, err
			}
			s.Tensors = append(s.Tensors, model.SampleTensor{
				Field: f.Name,
				Shape: datatypes.JSON(shape),
				DType: t.DType,
				Data:  encodeFloats(t.Data),
			})
			continue
		}
		extra.Set(f.Name, f.Value)
	}

	if extra.Len() > 0 {
		data, err := extra.MarshalJSON()
		if err != nil {
			return s, fmt.Errorf("failed to encode extra fields: %w", err)
		}
		s.Extra = datatypes.JSON(data)
	}
	return s, nil
}
