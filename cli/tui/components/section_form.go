package components

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

type bindKind int

const (
	bindText bindKind = iota
	bindChoice
	bindFlag
)

// binding holds the raw form state of one field.
type binding struct {
	field schema.Field
	kind  bindKind
	text  string
	flag  bool
}

// SectionForm is a huh form generated from a section schema. Inputs are
// typed in each field's edit unit.
type SectionForm struct {
	section   *schema.Section
	validator *validate.Validator
	bindings  []*binding
	form      *huh.Form
}

// NewSectionForm builds a form prefilled from current. errs are the messages of
// a previous rejected submit, shown under the offending fields.
func NewSectionForm(sec *schema.Section, current document.Section, v *validate.Validator, errs validate.Result) *SectionForm {
	sf := &SectionForm{section: sec, validator: v}
	fields := make([]huh.Field, 0, len(sec.Fields))
	for _, f := range sec.Fields {
		b := newBinding(f, current[f.Name])
		sf.bindings = append(sf.bindings, b)
		fields = append(fields, sf.control(b, errs[f.Name]))
	}
	sf.form = huh.NewForm(huh.NewGroup(fields...).Title(sec.Title)).WithShowHelp(true)
	return sf
}

func newBinding(f schema.Field, v field.Value) *binding {
	b := &binding{field: f}
	switch {
	case f.Type == field.TypeBool && v.Len() <= 1:
		b.kind = bindFlag
		if s, ok := v.First(); ok {
			b.flag = s.Bool()
		}
	case f.Enum != nil && !f.Seq:
		b.kind = bindChoice
		b.text = f.Format(v)
	default:
		b.kind = bindText
		b.text = f.Format(v)
	}
	return b
}

func (sf *SectionForm) control(b *binding, errMsg string) huh.Field {
	f := b.field
	title := f.Label
	if f.EditUnit != "" {
		title = fmt.Sprintf("%s (%s)", f.Label, f.EditUnit)
	} else if f.Unit != "" {
		title = fmt.Sprintf("%s (%s)", f.Label, f.Unit)
	}
	desc := f.Description
	if errMsg != "" {
		desc = strings.TrimSpace(desc + "\n" + styles.ErrorStyle.Render("✗ "+errMsg))
	}
	switch b.kind {
	case bindFlag:
		return huh.NewConfirm().Key(f.Name).Title(title).Description(desc).Value(&b.flag)
	case bindChoice:
		opts := make([]huh.Option[string], 0, len(f.Enum.Choices)+1)
		if !f.Required {
			opts = append(opts, huh.NewOption("(unset)", ""))
		}
		for _, c := range f.Enum.Choices {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", c.Label, c.Code), c.Code))
		}
		return huh.NewSelect[string]().Key(f.Name).Title(title).Description(desc).Options(opts...).Value(&b.text)
	default:
		if f.Seq && desc != "" {
			desc += "\nOne value per domain, comma separated."
		}
		return huh.NewInput().Key(f.Name).Title(title).Description(desc).Value(&b.text).
			Validate(func(raw string) error { return sf.check(f, raw) })
	}
}

// check rejects input that cannot be decoded or breaks a rule of the field
// alone. Conditional and cross-field rules are left to the section validator.
func (sf *SectionForm) check(f schema.Field, raw string) error {
	v, err := f.Parse(raw)
	if err != nil {
		return err
	}
	if sf.validator == nil || f.When != nil {
		return nil
	}
	if msg, failed := sf.validator.Field(sf.section.Name, f.Name, v); failed {
		return errors.New(msg)
	}
	return nil
}

// Section returns the section being edited.
func (sf *SectionForm) Section() *schema.Section {
	return sf.section
}

// Form returns the underlying huh form.
func (sf *SectionForm) Form() *huh.Form {
	return sf.form
}

// SetRaw sets the raw input of one field as if the user had typed it.
func (sf *SectionForm) SetRaw(name, raw string) error {
	for _, b := range sf.bindings {
		if b.field.Name != name {
			continue
		}
		if b.kind == bindFlag {
			s, err := field.Decode(raw, field.TypeBool)
			if err != nil {
				return err
			}
			b.flag = s.Bool()
			return nil
		}
		b.text = raw
		return nil
	}
	return &document.UnknownFieldError{Section: sf.section.Name, Field: name}
}

// Partial converts the form state into a section update in stored units.
func (sf *SectionForm) Partial() (document.Section, error) {
	out := make(document.Section, len(sf.bindings))
	for _, b := range sf.bindings {
		f := b.field
		if b.kind == bindFlag {
			s := field.DecodeBool(b.flag)
			if f.Seq {
				out[f.Name] = field.Seq(s)
			} else {
				out[f.Name] = field.Of(s)
			}
			continue
		}
		v, err := f.Parse(b.text)
		if err != nil {
			return nil, &document.TypeError{Section: sf.section.Name, Field: f.Name, Err: err}
		}
		out[f.Name] = v
	}
	return out, nil
}
