// Package document holds the configuration document built up by the wizard and
// the reducer that is the only way to change it.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

// Section maps field names to values.
type Section map[string]field.Value

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the field names in s, sorted.
func (s Section) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Document is an immutable revision of the configuration. Every section of the
// fixed set is always present.
type Document struct {
	sections  map[schema.SectionName]Section
	revision  uint64
	updatedAt time.Time
}

// Default builds the baked-in default document from reg.
func Default(reg *schema.Registry) Document {
	sections := make(map[schema.SectionName]Section, len(schema.SectionNames()))
	for _, sec := range reg.Sections() {
		sections[sec.Name] = defaultSection(sec)
	}
	return Document{sections: sections}
}

func defaultSection(sec *schema.Section) Section {
	out := make(Section, len(sec.Fields))
	for _, f := range sec.Fields {
		if f.HasDefault() {
			out[f.Name] = f.Default.Clone()
		}
	}
	return out
}

// Revision is the change marker; it grows with every reducer operation.
func (d Document) Revision() uint64 { return d.revision }

// UpdatedAt is the time of the last reducer operation.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

// Section returns a copy of the named section.
func (d Document) Section(name schema.SectionName) Section {
	return d.sections[name].Clone()
}

// Get returns a single field value.
func (d Document) Get(name schema.SectionName, fieldName string) (field.Value, bool) {
	v, ok := d.sections[name][fieldName]
	if !ok {
		return field.Value{}, false
	}
	return v.Clone(), true
}

// First returns index 0 of a field, the value that matters for a single domain.
func (d Document) First(name schema.SectionName, fieldName string) (field.Scalar, bool) {
	return d.sections[name][fieldName].First()
}

// Sections returns a deep copy of every section keyed by name.
func (d Document) Sections() map[schema.SectionName]Section {
	out := make(map[schema.SectionName]Section, len(d.sections))
	for name, sec := range d.sections {
		out[name] = sec.Clone()
	}
	return out
}

// IsZero reports whether d was never initialised.
func (d Document) IsZero() bool {
	return d.sections == nil
}

func (d Document) clone() Document {
	return Document{sections: d.Sections(), revision: d.revision, updatedAt: d.updatedAt}
}

type envelope struct {
	Revision  uint64                         `json:"revision"`
	UpdatedAt time.Time                      `json:"updated_at"`
	Sections  map[schema.SectionName]Section `json:"sections"`
}

// MarshalJSON writes the persisted form of the document.
func (d Document) MarshalJSON() ([]byte, error) {
	sections := d.sections
	if sections == nil {
		sections = map[schema.SectionName]Section{}
	}
	return json.Marshal(envelope{Revision: d.revision, UpdatedAt: d.updatedAt, Sections: sections})
}

// Decode parses the persisted form written by MarshalJSON, migrating legacy
// shapes and narrowing values to reg's field types.
func Decode(reg *schema.Registry, data []byte) (Document, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Document{}, nil, fmt.Errorf("parse document: %w", err)
	}
	if raw == nil {
		return Document{}, nil, fmt.Errorf("parse document: empty value")
	}
	var (
		revision  uint64
		updatedAt time.Time
	)
	if _, ok := raw["sections"].(map[string]any); ok {
		var env struct {
			Revision  uint64    `json:"revision"`
			UpdatedAt time.Time `json:"updated_at"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return Document{}, nil, fmt.Errorf("parse document envelope: %w", err)
		}
		revision, updatedAt = env.Revision, env.UpdatedAt
		raw, _ = raw["sections"].(map[string]any)
	}
	migrated, warnings := Migrate(reg, raw)
	doc, err := FromMap(reg, migrated)
	if err != nil {
		return Document{}, warnings, err
	}
	doc.revision = revision
	doc.updatedAt = updatedAt
	return doc, warnings, nil
}

// FromMap builds a document from canonical section maps. Missing sections and
// fields fall back to their defaults; unknown fields are rejected.
func FromMap(reg *schema.Registry, raw map[string]map[string]any) (Document, error) {
	doc := Default(reg)
	for name, fields := range raw {
		secName, err := schema.ParseSectionName(name)
		if err != nil {
			return Document{}, err
		}
		sec := reg.MustSection(secName)
		partial := make(Section, len(fields))
		for key, rawValue := range fields {
			v, err := field.FromAny(rawValue)
			if err != nil {
				return Document{}, &TypeError{Section: secName, Field: key, Err: err}
			}
			partial[key] = v
		}
		normalized, err := normalize(sec, partial)
		if err != nil {
			return Document{}, err
		}
		for key, v := range normalized {
			if !v.IsSet() {
				delete(doc.sections[secName], key)
				continue
			}
			doc.sections[secName][key] = v
		}
		backfill(sec, doc.sections[secName])
	}
	return doc, nil
}
