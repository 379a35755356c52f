package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/compozy/wrfconf/cli/tui/models"
	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/schema"
)

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Categorize converts known engine errors into structured CLI errors. It
// returns nil for errors it does not recognize.
func Categorize(err error) *CliError {
	var (
		cliErr     *CliError
		unknown    *document.UnknownFieldError
		typeErr    *document.TypeError
		notReady   *generate.NotReadyError
		requestErr *generate.RequestError
	)
	switch {
	case errors.As(err, &cliErr):
		return cliErr
	case errors.Is(err, context.Canceled):
		return NewCliError("OPERATION_CANCELED", "Operation was canceled by user")
	case errors.Is(err, context.DeadlineExceeded):
		return NewCliError("OPERATION_TIMEOUT", "Operation timed out")
	case errors.As(err, &unknown):
		return NewCliError("UNKNOWN_FIELD", unknown.Error()).
			WithContext("section", string(unknown.Section)).
			WithContext("field", unknown.Field)
	case errors.As(err, &typeErr):
		return NewCliError("FIELD_TYPE", typeErr.Error()).
			WithContext("section", string(typeErr.Section)).
			WithContext("field", typeErr.Field)
	case errors.Is(err, schema.ErrUnknownSection):
		return NewCliError("UNKNOWN_SECTION", err.Error())
	case errors.As(err, &notReady):
		return NewCliError("NOT_READY", notReady.Error()).WithContext("errors", notReady.Blockers)
	case errors.As(err, &requestErr):
		e := NewCliError("GENERATION_FAILED", requestErr.Error())
		if requestErr.Status != 0 {
			e = e.WithContext("status", requestErr.Status)
		}
		return e
	default:
		return nil
	}
}

// FormatError formats errors based on output mode
func FormatError(err error, mode models.Mode) string {
	if err == nil {
		return ""
	}
	if mode == models.ModeJSON {
		return formatErrorJSON(err)
	}
	return formatErrorTUI(err)
}

func formatErrorJSON(err error) string {
	resp := map[string]any{"error": err.Error()}
	if cliErr, ok := err.(*CliError); ok {
		resp["error"] = cliErr.Message
		resp["code"] = cliErr.Code
		if cliErr.Details != "" {
			resp["details"] = cliErr.Details
		}
		if len(cliErr.Context) > 0 {
			resp["context"] = cliErr.Context
		}
	}
	data, mErr := json.MarshalIndent(resp, "", "  ")
	if mErr != nil {
		return `{"error": "JSON marshaling failed"}`
	}
	return string(data)
}

func formatErrorTUI(err error) string {
	message, details := err.Error(), ""
	if cliErr, ok := err.(*CliError); ok {
		message, details = cliErr.Message, cliErr.Details
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	out := "✗ " + style.Render(message)
	if details != "" {
		detail := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
		out += "\n" + detail.Render("Details: "+details)
	}
	return out
}

// OutputError writes err to w in the mode's format.
func OutputError(w io.Writer, err error, mode models.Mode) {
	if err == nil {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, FormatError(err, mode))
}
