// Package schema is the static registry describing every configuration section:
// its fields, their types, defaults, constraints and enumerations.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/compozy/wrfconf/engine/field"
)

// SectionName names one section of the configuration document.
type SectionName string

const (
	TimeControl     SectionName = "time_control"
	DomainSetup     SectionName = "domain_setup"
	Physics         SectionName = "physics"
	Dynamics        SectionName = "dynamics"
	BoundaryControl SectionName = "boundary_control"
	QuiltControl    SectionName = "quilt_control"
)

// ErrUnknownSection is returned for section names outside the fixed set.
var ErrUnknownSection = errors.New("unknown section")

var sectionOrder = []SectionName{TimeControl, DomainSetup, Physics, Dynamics, BoundaryControl, QuiltControl}

// SectionNames returns the fixed set of sections in wizard order.
func SectionNames() []SectionName {
	return slices.Clone(sectionOrder)
}

// Condition restricts a field's rules to documents where another field of the
// same section currently holds one of the listed codes.
type Condition struct {
	Field string   `json:"field" yaml:"field"`
	In    []string `json:"in"    yaml:"in"`
}

// Constraints are the declarative rules attached to a field.
type Constraints struct {
	Required     bool
	Min          *float64
	Max          *float64
	ExclusiveMin bool
	Enum         *Enum
	Pattern      *regexp.Regexp
}

// Field describes a single configuration field.
type Field struct {
	Name        string
	Label       string
	Description string
	Type        field.Type
	Seq         bool
	Default     field.Value
	Constraints
	// Unit is the canonical unit the document stores.
	Unit string
	// EditUnit and EditScale describe the unit users type in;
	// canonical = display * EditScale.
	EditUnit  string
	EditScale float64
	When      *Condition
}

// HasDefault reports whether the field declares a default value.
func (f Field) HasDefault() bool {
	return f.Default.IsSet()
}

// Backfilled reports whether reducers must restore the default when unset.
func (f Field) Backfilled() bool {
	return f.Required && f.HasDefault()
}

// ToCanonical converts a scalar typed in the edit unit into the stored unit.
// Scaling is decimal so 12.1 km is stored as 12100 m, not 12100.000000000002.
func (f Field) ToCanonical(s field.Scalar) field.Scalar {
	return Scale(s, f.EditScale, f.Type)
}

// Scale multiplies a numeric scalar by factor in decimal arithmetic, rounding
// to a whole number when typ is an integer type. A zero factor means no scaling.
func Scale(s field.Scalar, factor float64, typ field.Type) field.Scalar {
	if factor == 0 || factor == 1 || !s.IsNumeric() {
		return s
	}
	v := decimal.NewFromFloat(s.Float()).Mul(decimal.NewFromFloat(factor))
	if typ == field.TypeInt {
		return field.Int(v.Round(0).IntPart())
	}
	return field.Float(v.InexactFloat64())
}

// ToDisplay converts a stored scalar into the edit unit.
func (f Field) ToDisplay(s field.Scalar) field.Scalar {
	if f.EditScale == 0 || f.EditScale == 1 || !s.IsNumeric() {
		return s
	}
	v := decimal.NewFromFloat(s.Float()).DivRound(decimal.NewFromFloat(f.EditScale), 6)
	if f.Type == field.TypeInt && v.IsInteger() {
		return field.Int(v.IntPart())
	}
	return field.Float(v.InexactFloat64())
}

// DisplayType is the scalar type users type in; scaled integers may be fractional.
func (f Field) DisplayType() field.Type {
	if f.Type == field.TypeInt && f.EditScale > 1 {
		return field.TypeFloat
	}
	return f.Type
}

// Section describes one section of the document.
type Section struct {
	Name  SectionName
	Title string
	// Minimal lists the fields that must hold a value before the wizard may
	// leave the step editing this section.
	Minimal []string
	// Substantive sections gate final generation.
	Substantive bool
	Fields      []Field
	index       map[string]int
}

func (s *Section) reindex() {
	s.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		s.index[f.Name] = i
	}
}

// Field returns the descriptor of name.
func (s *Section) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// FieldNames returns field names in declaration order.
func (s *Section) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Registry is an immutable set of section schemas.
type Registry struct {
	sections map[SectionName]*Section
}

// Option adjusts a registry while it is built.
type Option func(map[SectionName]*Section)

// WithSingleDomain pins max_dom to exactly one domain.
func WithSingleDomain() Option {
	return func(sections map[SectionName]*Section) {
		dom := sections[DomainSetup]
		i := dom.index["max_dom"]
		dom.Fields[i].Max = bound(1)
	}
}

// New builds a registry from the built-in section tables.
func New(opts ...Option) *Registry {
	sections := builtinSections()
	byName := make(map[SectionName]*Section, len(sections))
	for _, s := range sections {
		s.reindex()
		byName[s.Name] = s
	}
	for _, opt := range opts {
		opt(byName)
	}
	return &Registry{sections: byName}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared general-purpose registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Section looks up the schema of name.
func (r *Registry) Section(name SectionName) (*Section, error) {
	s, ok := r.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return s, nil
}

// MustSection is Section for names known at compile time.
func (r *Registry) MustSection(name SectionName) *Section {
	s, err := r.Section(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Sections returns every section in wizard order.
func (r *Registry) Sections() []*Section {
	out := make([]*Section, 0, len(sectionOrder))
	for _, name := range sectionOrder {
		out = append(out, r.sections[name])
	}
	return out
}

// ParseSectionName validates a user-supplied section name.
func ParseSectionName(s string) (SectionName, error) {
	name := SectionName(s)
	if !slices.Contains(sectionOrder, name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return name, nil
}

func bound(v float64) *float64 {
	return &v
}
