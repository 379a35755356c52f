package document

import (
	"encoding/json"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

// documentTable lays a document out as one row per field.
type documentTable struct {
	reg      *schema.Registry
	doc      document.Document
	report   validate.Report
	sections []schema.SectionName
}

func (t documentTable) Header() []string {
	return []string{"SECTION", "FIELD", "VALUE", "STATUS"}
}

func (t documentTable) Rows() [][]string {
	var rows [][]string
	for _, name := range t.sections {
		sec := t.reg.MustSection(name)
		values := t.doc.Section(name)
		for _, f := range sec.Fields {
			v := values[f.Name]
			text := "-"
			if v.IsSet() {
				text = f.DescribeValue(v)
				if f.EditUnit != "" {
					text += " " + f.EditUnit
				}
			}
			status := "ok"
			if msg, ok := t.report[name][f.Name]; ok {
				status = msg
			}
			rows = append(rows, []string{string(name), f.Name, text, status})
		}
	}
	return rows
}

// MarshalJSON keeps json and yaml output in stored units.
func (t documentTable) MarshalJSON() ([]byte, error) {
	if len(t.sections) == len(t.reg.Sections()) {
		return t.doc.MarshalJSON()
	}
	out := make(map[schema.SectionName]document.Section, len(t.sections))
	for _, name := range t.sections {
		out[name] = t.doc.Section(name)
	}
	return json.Marshal(out)
}
