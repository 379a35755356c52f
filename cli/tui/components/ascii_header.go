package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"github.com/compozy/wrfconf/cli/tui/styles"
)

// RenderASCIIHeader renders the program banner as ASCII art.
func RenderASCIIHeader(width int) string {
	logo := figure.NewFigure("WRFCONF", "standard", true)
	return styles.HeaderStyle.
		Align(lipgloss.Left).
		Width(width).
		Render(logo.String())
}
