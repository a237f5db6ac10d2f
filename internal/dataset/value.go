package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindTensor
)

// String returns the type name used in reports.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindTensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// Value is a single field value of a Record. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	list   []Value
	fields *Record
	tensor *Tensor
}

func Null() Value                 { return Value{} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func List(items ...Value) Value   { return Value{kind: KindList, list: items} }
func Map(r *Record) Value         { return Value{kind: KindMap, fields: r} }
func TensorValue(t *Tensor) Value { return Value{kind: KindTensor, tensor: t} }

// Strings builds a list value from plain strings.
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return List(list...)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt reports integer values. Floats are not converted.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat reports numeric values as float64, widening ints.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsMap() (*Record, bool) { return v.fields, v.kind == KindMap && v.fields != nil }

func (v Value) AsTensor() (*Tensor, bool) { return v.tensor, v.kind == KindTensor && v.tensor != nil }

// Len returns the length of lists, maps and tensors (first dimension),
// and -1 for everything else.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		if v.fields == nil {
			return 0
		}
		return v.fields.Len()
	case KindTensor:
		if v.tensor == nil {
			return 0
		}
		return v.tensor.Len()
	case KindString:
		return len([]rune(v.s))
	}
	return -1
}

// Literal renders values the way they appear in reports. Lists and maps
// are rendered as compact JSON.
func (v Value) Literal() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindTensor:
		if v.tensor == nil {
			return "Tensor ()"
		}
		return "Tensor " + v.tensor.ShapeString()
	case KindList, KindMap:
		b, err := v.MarshalJSON()
		if err != nil {
			return fmt.Sprintf("<%s: %v>", v.kind, err)
		}
		return string(b)
	default:
		return v.kind.String()
	}
}

func (v Value) String() string { return v.Literal() }

// Interface converts the value into plain Go values. Tensors are returned
// as *Tensor and maps as *Record.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		return v.fields
	case KindTensor:
		return v.tensor
	}
	return nil
}

// MarshalJSON writes the value verbatim. Tensors are written in archive
// form, including their data.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return marshalNoEscape(v.list)
	case KindMap:
		if v.fields == nil {
			return []byte("{}"), nil
		}
		return v.fields.MarshalJSON()
	case KindTensor:
		return marshalNoEscape(v.tensor)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		// keep whole floats distinguishable from ints on reload
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return []byte(s), nil
	}
	return marshalNoEscape(v.Interface())
}

var _ json.Marshaler = Value{}
