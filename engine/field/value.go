// Package field holds the typed value model of the configuration document and the
// codec that converts raw form input into those values and back.
package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Type identifies the scalar type of a configuration field.
type Type string

const (
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeString Type = "string"
	TypeDate   Type = "date"
)

// Scalar is a single typed value.
type Scalar struct {
	typ Type
	i   int64
	f   float64
	b   bool
	s   string
}

func Int(v int64) Scalar         { return Scalar{typ: TypeInt, i: v} }
func Float(v float64) Scalar     { return Scalar{typ: TypeFloat, f: v} }
func Bool(v bool) Scalar         { return Scalar{typ: TypeBool, b: v} }
func String(v string) Scalar     { return Scalar{typ: TypeString, s: v} }
func DateString(v string) Scalar { return Scalar{typ: TypeDate, s: v} }

func (s Scalar) Type() Type { return s.typ }

// Int returns the integer payload; floats are truncated.
func (s Scalar) Int() int64 {
	if s.typ == TypeFloat {
		return int64(s.f)
	}
	return s.i
}

// Float returns the numeric payload as float64.
func (s Scalar) Float() float64 {
	if s.typ == TypeInt {
		return float64(s.i)
	}
	return s.f
}

func (s Scalar) Bool() bool { return s.b }

// Str returns the string payload of string and date scalars.
func (s Scalar) Str() string { return s.s }

// IsNumeric reports whether the scalar carries an int or float.
func (s Scalar) IsNumeric() bool {
	return s.typ == TypeInt || s.typ == TypeFloat
}

// Native returns the scalar as a plain Go value (int64, float64, bool or string).
func (s Scalar) Native() any {
	switch s.typ {
	case TypeInt:
		return s.i
	case TypeFloat:
		return s.f
	case TypeBool:
		return s.b
	default:
		return s.s
	}
}

// Convert returns the scalar converted to typ. Integers widen to floats and
// integral floats narrow to integers; every other mismatch fails.
func (s Scalar) Convert(typ Type) (Scalar, error) {
	if s.typ == typ {
		return s, nil
	}
	switch {
	case s.typ == TypeInt && typ == TypeFloat:
		return Float(float64(s.i)), nil
	case s.typ == TypeFloat && typ == TypeInt:
		if s.f != math.Trunc(s.f) || math.IsInf(s.f, 0) || math.IsNaN(s.f) {
			return Scalar{}, fmt.Errorf("%v is not an integer", s.f)
		}
		return Int(int64(s.f)), nil
	case s.typ == TypeString && typ == TypeDate:
		return DateString(s.s), nil
	case s.typ == TypeDate && typ == TypeString:
		return String(s.s), nil
	}
	return Scalar{}, fmt.Errorf("cannot use %s value as %s", s.typ, typ)
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Native())
}

// Value is a scalar or an ordered sequence of scalars. The zero Value is unset.
type Value struct {
	items []Scalar
	seq   bool
}

// Of returns a single-scalar value.
func Of(s Scalar) Value {
	return Value{items: []Scalar{s}}
}

// Seq returns a sequence value; index 0 is the outermost domain.
func Seq(items ...Scalar) Value {
	return Value{items: slices.Clone(items), seq: true}
}

// IsSet reports whether the value carries at least one scalar.
func (v Value) IsSet() bool { return len(v.items) > 0 }

func (v Value) IsSeq() bool { return v.seq }

func (v Value) Len() int { return len(v.items) }

// First returns the scalar at index 0.
func (v Value) First() (Scalar, bool) {
	if len(v.items) == 0 {
		return Scalar{}, false
	}
	return v.items[0], true
}

// At returns the scalar at index i.
func (v Value) At(i int) (Scalar, bool) {
	if i < 0 || i >= len(v.items) {
		return Scalar{}, false
	}
	return v.items[i], true
}

// Scalars returns a copy of the contained scalars.
func (v Value) Scalars() []Scalar {
	return slices.Clone(v.items)
}

// Clone returns a value that shares no storage with v.
func (v Value) Clone() Value {
	if v.items == nil {
		return Value{seq: v.seq}
	}
	return Value{items: slices.Clone(v.items), seq: v.seq}
}

func (v Value) Equal(o Value) bool {
	return v.seq == o.seq && slices.Equal(v.items, o.items)
}

// Coerce shapes v to a field of the given type and arity.
func (v Value) Coerce(typ Type, seq bool) (Value, error) {
	if !v.IsSet() {
		return Value{}, nil
	}
	if !seq && len(v.items) > 1 {
		return Value{}, fmt.Errorf("expected a single value, got %d", len(v.items))
	}
	items := make([]Scalar, len(v.items))
	for i, s := range v.items {
		c, err := s.Convert(typ)
		if err != nil {
			return Value{}, err
		}
		items[i] = c
	}
	return Value{items: items, seq: seq}, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsSet() {
		if v.seq {
			return []byte("[]"), nil
		}
		return []byte("null"), nil
	}
	if !v.seq {
		return json.Marshal(v.items[0])
	}
	return json.Marshal(v.items)
}

// UnmarshalJSON infers scalar types from JSON; integral numbers become ints.
// Callers that know the field schema narrow the result with Coerce.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny builds a Value from a decoded JSON or YAML tree node.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case []any:
		items := make([]Scalar, 0, len(t))
		for i, el := range t {
			s, err := scalarFromAny(el)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, s)
		}
		return Value{items: items, seq: true}, nil
	default:
		s, err := scalarFromAny(t)
		if err != nil {
			return Value{}, err
		}
		return Of(s), nil
	}
}

func scalarFromAny(raw any) (Scalar, error) {
	switch t := raw.(type) {
	case Scalar:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		if DatePattern.MatchString(t) {
			return DateString(t), nil
		}
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Int(int64(t)), nil
	case float32:
		return numberScalar(float64(t)), nil
	case float64:
		return numberScalar(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid number %q", t.String())
		}
		return Float(f), nil
	}
	return Scalar{}, fmt.Errorf("unsupported value of type %T", raw)
}

func numberScalar(f float64) Scalar {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}
