package helpers

import "fmt"

// OutputFormat represents different output formats
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatTUI   OutputFormat = "tui"
	OutputFormatAuto  OutputFormat = "auto"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatJSON, OutputFormatTable, OutputFormatYAML, OutputFormatTUI, OutputFormatAuto:
		return f, nil
	case "":
		return OutputFormatAuto, nil
	default:
		return "", NewCliError("INVALID_FORMAT", fmt.Sprintf("unsupported output format %q", s),
			"use one of json, yaml, table, tui, auto")
	}
}
