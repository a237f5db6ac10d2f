package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TensorTypeTag marks tensor objects in document archives and exports.
const TensorTypeTag = "Tensor"

// Tensor is a dense numeric array stored row-major. DType is the element
// type name carried over from the archive; Data is always held as float64.
type Tensor struct {
	Shape []int
	DType string
	Data  []float64
}

// NewTensor validates that data matches shape.
func NewTensor(shape []int, dtype string, data []float64) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, n, len(data))
	}
	if dtype == "" {
		dtype = "float32"
	}
	return &Tensor{Shape: append([]int(nil), shape...), DType: dtype, Data: data}, nil
}

// Len is the size of the first dimension (number of frames).
func (t *Tensor) Len() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[0]
}

// ShapeString renders the shape as "(10, 3)".
func (t *Tensor) ShapeString() string {
	parts := make([]string, len(t.Shape))
	for i, d := range t.Shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON writes the tensor in archive form.
func (t *Tensor) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Type  string    `json:"_type"`
		Shape []int     `json:"shape"`
		DType string    `json:"dtype"`
		Data  []float64 `json:"data"`
	}{TensorTypeTag, nonNilShape(t.Shape), t.DType, nonNilData(t.Data)})
}

// TensorSummary is the reduced form of a tensor used where the full data is
// not wanted.
type TensorSummary struct {
	Type  string  `json:"_type"`
	Shape []int   `json:"shape"`
	DType string  `json:"dtype"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Summarize reduces t over all elements. An empty tensor yields NaN
// min/max/mean, which callers must handle before JSON encoding.
func Summarize(t *Tensor) TensorSummary {
	s := TensorSummary{
		Type:  TensorTypeTag,
		Shape: nonNilShape(t.Shape),
		DType: t.DType,
		Min:   math.NaN(),
		Max:   math.NaN(),
		Mean:  math.NaN(),
	}
	if len(t.Data) == 0 {
		return s
	}
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, x := range t.Data {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
		sum += x
	}
	s.Min, s.Max, s.Mean = lo, hi, sum/float64(len(t.Data))
	return s
}

func nonNilShape(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

func nonNilData(d []float64) []float64 {
	if d == nil {
		return []float64{}
	}
	return d
}
