package schema

import (
	"fmt"

	"github.com/compozy/wrfconf/engine/field"
)

// Parse decodes raw input typed in the field's edit unit into a canonical value.
func (f Field) Parse(raw string) (field.Value, error) {
	v, err := field.DecodeValue(raw, f.DisplayType(), f.Seq)
	if err != nil {
		return field.Value{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	if !v.IsSet() {
		return v, nil
	}
	items := v.Scalars()
	for i, s := range items {
		items[i] = f.ToCanonical(s)
	}
	if f.Seq {
		return field.Seq(items...), nil
	}
	return field.Of(items[0]), nil
}

// Format renders a stored value in the field's edit unit.
func (f Field) Format(v field.Value) string {
	items := v.Scalars()
	for i, s := range items {
		items[i] = f.ToDisplay(s)
	}
	if f.Seq {
		return field.EncodeValue(field.Seq(items...))
	}
	if len(items) == 0 {
		return ""
	}
	return field.Encode(items[0])
}

// DescribeValue renders a stored value for reading, using enumeration labels.
func (f Field) DescribeValue(v field.Value) string {
	if f.Enum == nil || !v.IsSet() {
		return f.Format(v)
	}
	s, _ := v.First()
	return f.Enum.Describe(field.Encode(s))
}
