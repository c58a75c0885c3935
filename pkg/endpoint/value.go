package endpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a parameter value. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	raw  any
}

func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Null() Value { return Value{} }

// Raw wraps an arbitrary JSON-shaped value such as a list or an object.
// Raw values are never written to a query string.
func Raw(v any) Value { return Value{kind: KindRaw, raw: v} }

func (v Value) Kind() Kind { return v.kind }

// Interface returns v as a plain Go value: nil, string, int64, float64, bool
// or the raw value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindRaw:
		return v.raw
	default:
		return nil
	}
}

// Text returns the query-string form of v and whether v has one.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// MarshalJSON fails for NaN/Inf floats and for raw values encoding/json rejects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("float %v is not representable in JSON", v.f)
		}
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	case KindRaw:
		return json.Marshal(v.raw)
	default:
		return nil, fmt.Errorf("unknown value kind %d", int(v.kind))
	}
}

func (v Value) String() string {
	if s, ok := v.Text(); ok {
		return s
	}
	if v.kind == KindNull {
		return "null"
	}
	return fmt.Sprintf("%v", v.raw)
}
