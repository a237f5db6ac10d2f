package dataset

import (
	"bytes"
	"encoding/json"
)

// Well-known field names.
const (
	FieldVideoName       = "video_name"
	FieldMotionType      = "motion_type"
	FieldCoordinates     = "coordinates"
	FieldOriginalSeqLen  = "original_seq_len"
	FieldCameraView      = "camera_view"
	FieldLabels          = "labels"
	FieldAugmentedLabels = "augmented_labels"
)

// SegmentFields lists the segment-boundary fields in display order.
var SegmentFields = []string{
	"aligned_start_frame", "aligned_end_frame", "aligned_seq_len",
	"error_start_frame", "error_end_frame", "error_seq_len",
	"gt_start_frame", "gt_end_frame", "gt_seq_len",
}

// Field is a single name/value pair of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from field name to value. Fields keep the
// order they were added in; setting an existing name replaces it in place.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in order.
func NewRecord(fields ...Field) *Record {
	r := &Record{}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set adds or replaces a field.
func (r *Record) Set(name string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Get returns the field value and whether it exists.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return Value{}, false
	}
	return r.fields[i].Value, true
}

// Has reports whether the field exists, regardless of its value.
func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Keys returns field names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Fields returns a copy of the ordered fields.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// String returns a string field.
func (r *Record) String(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Int returns an integer field.
func (r *Record) Int(name string) (int64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// Strings returns a list field whose items are all strings.
func (r *Record) Strings(name string) ([]string, bool) {
	v, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	list, ok := v.AsList()
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Tensor returns a tensor field.
func (r *Record) Tensor(name string) (*Tensor, bool) {
	v, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return v.AsTensor()
}

// MarshalJSON writes fields as a JSON object in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r != nil {
		for i, f := range r.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalNoEscape(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal without HTML escaping.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
