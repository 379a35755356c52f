package document

import (
	"errors"
	"fmt"

	"github.com/compozy/wrfconf/engine/schema"
)

var (
	// ErrUnknownField matches every *UnknownFieldError.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldType matches every *TypeError.
	ErrFieldType = errors.New("field type mismatch")
)

// UnknownFieldError rejects an update naming a field outside the section schema.
type UnknownFieldError struct {
	Section schema.SectionName
	Field   string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: unknown field %q", e.Section, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// TypeError rejects an update whose value cannot take the field's type.
type TypeError struct {
	Section schema.SectionName
	Field   string
	Err     error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Section, e.Field, e.Err)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrFieldType
}

func (e *TypeError) Unwrap() error {
	return e.Err
}
