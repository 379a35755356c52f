// Package validate checks a configuration document against the section schema.
// Results are data: a validator never fails, it reports.
package validate

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

const dateTag = "wrfdate"

// Result maps field names to the first rule each field failed.
type Result map[string]string

// Valid reports whether no field failed.
func (r Result) Valid() bool { return len(r) == 0 }

// Fields returns the failing field names, sorted.
func (r Result) Fields() []string {
	return slices.Sorted(maps.Keys(r))
}

// Report holds one Result per section.
type Report map[schema.SectionName]Result

// Valid reports whether every section is valid.
func (r Report) Valid() bool {
	for _, res := range r {
		if !res.Valid() {
			return false
		}
	}
	return true
}

// Count is the number of failing fields across sections.
func (r Report) Count() int {
	n := 0
	for _, res := range r {
		n += len(res)
	}
	return n
}

// Only narrows the report to the named sections.
func (r Report) Only(names ...schema.SectionName) Report {
	out := make(Report, len(names))
	for _, name := range names {
		if res, ok := r[name]; ok {
			out[name] = res
		}
	}
	return out
}

type rules struct {
	field  schema.Field
	date   bool
	enum   string
	bounds string
}

// Validator evaluates schema constraints and the cross-field rules of each section.
type Validator struct {
	reg      *schema.Registry
	validate *validator.Validate
	rules    map[schema.SectionName][]rules
}

func New(reg *schema.Registry) *Validator {
	v := validator.New()
	if err := v.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool {
		return field.ValidDate(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	out := &Validator{reg: reg, validate: v, rules: make(map[schema.SectionName][]rules)}
	for _, sec := range reg.Sections() {
		compiled := make([]rules, 0, len(sec.Fields))
		for _, f := range sec.Fields {
			compiled = append(compiled, compile(f))
		}
		out.rules[sec.Name] = compiled
	}
	return out
}

func compile(f schema.Field) rules {
	r := rules{field: f, date: f.Type == field.TypeDate || f.Pattern != nil}
	if f.Enum != nil {
		r.enum = "oneof=" + strings.Join(f.Enum.Codes(), " ")
	}
	var tags []string
	if f.Min != nil {
		op := "gte"
		if f.ExclusiveMin {
			op = "gt"
		}
		tags = append(tags, op+"="+formatBound(*f.Min))
	}
	if f.Max != nil {
		tags = append(tags, "lte="+formatBound(*f.Max))
	}
	r.bounds = strings.Join(tags, ",")
	return r
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Section validates one section. Every failing field is reported; within a
// field the first failing rule wins.
func (v *Validator) Section(doc document.Document, name schema.SectionName) Result {
	res := Result{}
	compiled, ok := v.rules[name]
	if !ok {
		return res
	}
	sec := doc.Section(name)
	for _, r := range compiled {
		if !applies(r.field, sec) {
			continue
		}
		if msg, failed := v.check(r, sec[r.field.Name]); failed {
			res[r.field.Name] = msg
		}
	}
	checkDomainSpan(doc, sec, res)
	switch name {
	case schema.TimeControl:
		checkDateOrder(sec, res)
	case schema.BoundaryControl:
		checkBoundaryWidth(sec, res)
	}
	return res
}

// All validates every section of the document.
func (v *Validator) All(doc document.Document) Report {
	out := make(Report, len(v.rules))
	for _, sec := range v.reg.Sections() {
		out[sec.Name] = v.Section(doc, sec.Name)
	}
	return out
}

// Field validates a single candidate value for one field without a document.
// Forms use it to reject input before submitting.
func (v *Validator) Field(name schema.SectionName, fieldName string, value field.Value) (string, bool) {
	for _, r := range v.rules[name] {
		if r.field.Name == fieldName {
			return v.check(r, value)
		}
	}
	return "", false
}

func applies(f schema.Field, sec document.Section) bool {
	if f.When == nil {
		return true
	}
	s, ok := sec[f.When.Field].First()
	if !ok {
		return false
	}
	return slices.Contains(f.When.In, field.Encode(s))
}

func (v *Validator) check(r rules, value field.Value) (string, bool) {
	if !value.IsSet() {
		if r.field.Required {
			return "is required", true
		}
		return "", false
	}
	items := value.Scalars()
	for i, s := range items {
		msg, failed := v.checkScalar(r, s)
		if !failed {
			continue
		}
		if len(items) > 1 {
			msg = fmt.Sprintf("domain %d: %s", i+1, msg)
		}
		return msg, true
	}
	return "", false
}

func (v *Validator) checkScalar(r rules, s field.Scalar) (string, bool) {
	if s.Type() != r.field.Type {
		if _, err := s.Convert(r.field.Type); err != nil {
			return fmt.Sprintf("must be a %s", r.field.Type), true
		}
	}
	if r.field.Required && s.Type() == field.TypeString && strings.TrimSpace(s.Str()) == "" {
		return "is required", true
	}
	if r.date {
		if err := v.validate.Var(s.Str(), dateTag); err != nil {
			return "must be a valid date in the form YYYY-MM-DD_HH:MM:SS", true
		}
	}
	if r.enum != "" {
		if err := v.validate.Var(field.Encode(s), r.enum); err != nil {
			return "must be one of " + strings.Join(r.field.Enum.Codes(), ", "), true
		}
	}
	if r.bounds != "" && s.IsNumeric() {
		if err := v.validate.Var(s.Float(), r.bounds); err != nil {
			return boundMessage(err), true
		}
	}
	return "", false
}

func boundMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be ≥ " + fe.Param()
	case "lte":
		return "must be ≤ " + fe.Param()
	}
	return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
}

// checkDomainSpan rejects per-domain sequences longer than max_dom. Shorter
// sequences are fine: the last value carries over to the remaining domains.
func checkDomainSpan(doc document.Document, sec document.Section, res Result) {
	maxDom, ok := doc.First(schema.DomainSetup, "max_dom")
	if !ok || !maxDom.IsNumeric() || maxDom.Int() < 1 {
		return
	}
	for _, name := range slices.Sorted(maps.Keys(sec)) {
		v := sec[name]
		if _, failed := res[name]; failed || !v.IsSeq() {
			continue
		}
		if int64(v.Len()) > maxDom.Int() {
			res[name] = fmt.Sprintf("has %d domain values but max_dom is %d", v.Len(), maxDom.Int())
		}
	}
}

func checkDateOrder(sec document.Section, res Result) {
	if _, failed := res["start_date_str"]; failed {
		return
	}
	if _, failed := res["end_date_str"]; failed {
		return
	}
	starts, ends := sec["start_date_str"].Scalars(), sec["end_date_str"].Scalars()
	for i := range min(len(starts), len(ends)) {
		start, err := field.ParseDate(starts[i].Str())
		if err != nil {
			return
		}
		end, err := field.ParseDate(ends[i].Str())
		if err != nil {
			return
		}
		if !end.After(start) {
			msg := "end date must be later than start date"
			if len(ends) > 1 {
				msg = fmt.Sprintf("domain %d: %s", i+1, msg)
			}
			res["end_date_str"] = msg
			return
		}
	}
}

func checkBoundaryWidth(sec document.Section, res Result) {
	for _, name := range []string{"spec_bdy_width", "spec_zone", "relax_zone"} {
		if _, failed := res[name]; failed {
			return
		}
	}
	width, okW := sec["spec_bdy_width"].First()
	spec, okS := sec["spec_zone"].First()
	relax, okR := sec["relax_zone"].First()
	if !okW || !okS || !okR {
		return
	}
	if want := spec.Int() + relax.Int(); width.Int() != want {
		res["spec_bdy_width"] = fmt.Sprintf("must equal spec_zone + relax_zone (%d)", want)
	}
}
