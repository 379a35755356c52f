package schema

import "github.com/compozy/wrfconf/engine/field"

// FieldInfo is the serialisable description of a field.
type FieldInfo struct {
	Name        string      `json:"name"                  yaml:"name"`
	Label       string      `json:"label"                 yaml:"label"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Type        field.Type  `json:"type"                  yaml:"type"`
	Seq         bool        `json:"seq,omitempty"         yaml:"seq,omitempty"`
	Required    bool        `json:"required,omitempty"    yaml:"required,omitempty"`
	Default     field.Value `json:"default,omitempty"     yaml:"-"`
	Min         *float64    `json:"min,omitempty"         yaml:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"         yaml:"max,omitempty"`
	Exclusive   bool        `json:"exclusive_min,omitempty" yaml:"exclusive_min,omitempty"`
	Enum        string      `json:"enum,omitempty"        yaml:"enum,omitempty"`
	Unit        string      `json:"unit,omitempty"        yaml:"unit,omitempty"`
	EditUnit    string      `json:"edit_unit,omitempty"   yaml:"edit_unit,omitempty"`
	When        *Condition  `json:"when,omitempty"        yaml:"when,omitempty"`
}

// SectionInfo is the serialisable description of a section.
type SectionInfo struct {
	Name        SectionName `json:"name"        yaml:"name"`
	Title       string      `json:"title"       yaml:"title"`
	Minimal     []string    `json:"minimal"     yaml:"minimal"`
	Substantive bool        `json:"substantive" yaml:"substantive"`
	Fields      []FieldInfo `json:"fields"      yaml:"fields"`
}

// Describe lists every section of reg in wizard order.
func (r *Registry) Describe() []SectionInfo {
	out := make([]SectionInfo, 0, len(sectionOrder))
	for _, sec := range r.Sections() {
		info := SectionInfo{
			Name:        sec.Name,
			Title:       sec.Title,
			Minimal:     sec.Minimal,
			Substantive: sec.Substantive,
			Fields:      make([]FieldInfo, 0, len(sec.Fields)),
		}
		for _, f := range sec.Fields {
			fi := FieldInfo{
				Name:        f.Name,
				Label:       f.Label,
				Description: f.Description,
				Type:        f.Type,
				Seq:         f.Seq,
				Required:    f.Required,
				Default:     f.Default,
				Min:         f.Min,
				Max:         f.Max,
				Exclusive:   f.ExclusiveMin,
				Unit:        f.Unit,
				EditUnit:    f.EditUnit,
				When:        f.When,
			}
			if f.Enum != nil {
				fi.Enum = f.Enum.Name
			}
			info.Fields = append(info.Fields, fi)
		}
		out = append(out, info)
	}
	return out
}
