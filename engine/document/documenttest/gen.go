// Package documenttest provides gopter generators for configuration documents.
package documenttest

import (
	"reflect"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

// Update is a partial update aimed at one section.
type Update struct {
	Section schema.SectionName
	Fields  document.Section
}

// Scalar generates scalars of the field's type, drawn from its enumeration
// when it has one.
func Scalar(f schema.Field) gopter.Gen {
	if f.Enum != nil {
		choices := make([]any, 0, len(f.Enum.Codes()))
		for _, code := range f.Enum.Codes() {
			s, err := field.Decode(code, f.Type)
			if err != nil {
				panic(err)
			}
			choices = append(choices, s)
		}
		return gen.OneConstOf(choices...)
	}
	switch f.Type {
	case field.TypeInt:
		return gen.Int64Range(-1000, 100000).Map(func(v int64) field.Scalar { return field.Int(v) })
	case field.TypeFloat:
		return gen.Float64Range(-1e6, 1e6).Map(func(v float64) field.Scalar { return field.Float(v) })
	case field.TypeBool:
		return gen.Bool().Map(func(v bool) field.Scalar { return field.Bool(v) })
	case field.TypeDate:
		return gen.Int64Range(0, 4102444800).Map(func(v int64) field.Scalar {
			return field.DateString(time.Unix(v, 0).UTC().Format(field.DateLayout))
		})
	default:
		return gen.Identifier().Map(func(v string) field.Scalar { return field.String(v) })
	}
}

// Value generates set values shaped like the field: one scalar, or one to
// three scalars for per-domain fields.
func Value(f schema.Field) gopter.Gen {
	if !f.Seq {
		return Scalar(f).Map(func(s field.Scalar) field.Value { return field.Of(s) })
	}
	return gen.IntRange(1, 3).
		FlatMap(func(n any) gopter.Gen { return gen.SliceOfN(n.(int), Scalar(f)) }, reflect.TypeOf([]field.Scalar{})).
		Map(func(items []field.Scalar) field.Value { return field.Seq(items...) })
}

// SectionUpdate generates updates to sec touching a random subset of its fields.
func SectionUpdate(sec *schema.Section) gopter.Gen {
	gens := make([]gopter.Gen, 0, len(sec.Fields)+1)
	gens = append(gens, gen.SliceOfN(len(sec.Fields), gen.Bool()))
	for _, f := range sec.Fields {
		gens = append(gens, Value(f))
	}
	return gopter.CombineGens(gens...).Map(func(vals []any) Update {
		mask := vals[0].([]bool)
		fields := make(document.Section)
		for i, f := range sec.Fields {
			if i < len(mask) && mask[i] {
				fields[f.Name] = vals[i+1].(field.Value)
			}
		}
		return Update{Section: sec.Name, Fields: fields}
	})
}

// AnyUpdate generates updates to any section of reg.
func AnyUpdate(reg *schema.Registry) gopter.Gen {
	sections := reg.Sections()
	gens := make([]gopter.Gen, len(sections))
	for i, sec := range sections {
		gens[i] = SectionUpdate(sec)
	}
	return gen.OneGenOf(gens...)
}

// Documents generates documents reached by applying up to five updates to the defaults.
func Documents(reg *schema.Registry) gopter.Gen {
	reducer := document.NewReducer(reg)
	updateGen := AnyUpdate(reg)
	return gen.IntRange(0, 5).
		FlatMap(func(n any) gopter.Gen { return gen.SliceOfN(n.(int), updateGen) }, reflect.TypeOf([]Update{})).
		Map(func(updates []Update) document.Document {
			doc := document.Default(reg)
			for _, u := range updates {
				next, err := reducer.Apply(doc, u.Section, u.Fields)
				if err != nil {
					panic(err)
				}
				doc = next
			}
			return doc
		})
}
