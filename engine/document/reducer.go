package document

import (
	"time"

	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

// Clock returns the current time.
type Clock func() time.Time

// Reducer produces new document revisions. It never mutates its inputs.
type Reducer struct {
	reg   *schema.Registry
	clock Clock
}

type ReducerOption func(*Reducer)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(clock Clock) ReducerOption {
	return func(r *Reducer) {
		r.clock = clock
	}
}

func NewReducer(reg *schema.Registry, opts ...ReducerOption) *Reducer {
	r := &Reducer{reg: reg, clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the schema the reducer normalises against.
func (r *Reducer) Registry() *schema.Registry {
	return r.reg
}

// Apply merges partial into one section. Named fields are replaced wholesale;
// every other field and section is carried over unchanged.
func (r *Reducer) Apply(doc Document, name schema.SectionName, partial Section) (Document, error) {
	sec, err := r.reg.Section(name)
	if err != nil {
		return Document{}, err
	}
	normalized, err := normalize(sec, partial)
	if err != nil {
		return Document{}, err
	}
	next := r.base(doc)
	target := next.sections[name]
	for key, v := range normalized {
		if !v.IsSet() {
			delete(target, key)
			continue
		}
		target[key] = v
	}
	backfill(sec, target)
	return r.stamp(next, doc.revision), nil
}

// Replace swaps the whole document for loaded. The revision continues from
// whichever of the two is further ahead.
func (r *Reducer) Replace(doc Document, loaded Document) Document {
	next := r.base(loaded)
	for _, sec := range r.reg.Sections() {
		backfill(sec, next.sections[sec.Name])
	}
	return r.stamp(next, max(doc.revision, loaded.revision))
}

// Reset restores the default document.
func (r *Reducer) Reset(doc Document) Document {
	return r.stamp(Default(r.reg), doc.revision)
}

func (r *Reducer) base(doc Document) Document {
	if doc.IsZero() {
		return Default(r.reg)
	}
	next := doc.clone()
	for _, sec := range r.reg.Sections() {
		if next.sections[sec.Name] == nil {
			next.sections[sec.Name] = Section{}
		}
	}
	return next
}

func (r *Reducer) stamp(doc Document, prev uint64) Document {
	doc.revision = prev + 1
	doc.updatedAt = r.clock()
	return doc
}

func normalize(sec *schema.Section, partial Section) (Section, error) {
	out := make(Section, len(partial))
	for key, v := range partial {
		f, ok := sec.Field(key)
		if !ok {
			return nil, &UnknownFieldError{Section: sec.Name, Field: key}
		}
		coerced, err := v.Coerce(f.Type, f.Seq)
		if err != nil {
			return nil, &TypeError{Section: sec.Name, Field: key, Err: err}
		}
		out[key] = coerced
	}
	return out, nil
}

func backfill(sec *schema.Section, target Section) {
	for _, f := range sec.Fields {
		if !f.Backfilled() {
			continue
		}
		if v, ok := target[f.Name]; !ok || !v.IsSet() {
			target[f.Name] = f.Default.Clone()
		}
	}
}

// Set is shorthand for a one-field partial.
func Set(fieldName string, v field.Value) Section {
	return Section{fieldName: v}
}
