package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/compozy/wrfconf/cli/tui/styles"
)

// BreadcrumbItem represents a single breadcrumb item
type BreadcrumbItem struct {
	Label  string
	Active bool
	Done   bool
}

// Breadcrumb shows the wizard steps and where the user is.
type Breadcrumb struct {
	Width int
	Items []BreadcrumbItem
}

// NewBreadcrumb creates a breadcrumb over labels with none active.
func NewBreadcrumb(labels ...string) Breadcrumb {
	items := make([]BreadcrumbItem, len(labels))
	for i, l := range labels {
		items[i] = BreadcrumbItem{Label: l}
	}
	return Breadcrumb{Items: items}
}

// SetWidth sets the breadcrumb width
func (b *Breadcrumb) SetWidth(width int) {
	b.Width = width
}

// SetActive marks item i active. done reports which items are complete.
func (b *Breadcrumb) SetActive(i int, done func(int) bool) {
	for j := range b.Items {
		b.Items[j].Active = j == i
		b.Items[j].Done = done != nil && done(j)
	}
}

// View renders the breadcrumb
func (b *Breadcrumb) View() string {
	if len(b.Items) == 0 {
		return ""
	}
	parts := make([]string, 0, 2*len(b.Items))
	for i, item := range b.Items {
		label := item.Label
		style := styles.BreadcrumbStyle
		switch {
		case item.Active:
			style = styles.BreadcrumbActiveStyle
		case item.Done:
			style = styles.BreadcrumbDoneStyle
			label = "✓ " + label
		}
		parts = append(parts, style.Render(label))
		if i < len(b.Items)-1 {
			parts = append(parts, styles.BreadcrumbStyle.Render(" › "))
		}
	}
	out := strings.Join(parts, "")
	if b.Width > 0 && lipgloss.Width(out) > b.Width {
		for lipgloss.Width(out) > b.Width-3 && len(parts) >= 3 {
			parts = parts[2:]
			out = strings.Join(parts, "")
		}
		out = "..." + out
	}
	return out
}
