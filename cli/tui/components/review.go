package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

// RenderReview renders every section of doc read-only, with enumeration
// labels and the messages of report next to failing fields.
func RenderReview(reg *schema.Registry, doc document.Document, report validate.Report) string {
	var b strings.Builder
	for _, sec := range reg.Sections() {
		b.WriteString(RenderSection(sec, doc.Section(sec.Name), report[sec.Name]))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSection renders one section as label/value lines.
func RenderSection(sec *schema.Section, values document.Section, errs validate.Result) string {
	lines := []string{styles.SectionTitleStyle.Render(sec.Title)}
	for _, f := range sec.Fields {
		v := values[f.Name]
		value := styles.UnsetStyle.Render("not set")
		if v.IsSet() {
			text := f.DescribeValue(v)
			if f.EditUnit != "" {
				text += " " + f.EditUnit
			} else if f.Unit != "" {
				text += " " + f.Unit
			}
			value = styles.ValueStyle.Render(text)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, styles.LabelStyle.Render(f.Label), value)
		if msg, ok := errs[f.Name]; ok {
			line += "  " + styles.ErrorStyle.Render(fmt.Sprintf("✗ %s", msg))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
