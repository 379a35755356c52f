package components

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/compozy/wrfconf/cli/tui/models"
	"github.com/compozy/wrfconf/cli/tui/styles"
)

// FormRunner runs one huh form as its own program and records how it ended.
type FormRunner struct {
	models.BaseModel
	form   *huh.Form
	footer string
	state  huh.FormState
}

func NewFormRunner(ctx context.Context, form *huh.Form, footer string) *FormRunner {
	return &FormRunner{BaseModel: models.NewBaseModel(ctx), form: form, footer: footer}
}

func (r *FormRunner) Init() tea.Cmd {
	return r.form.Init()
}

func (r *FormRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := r.BaseModel.Update(msg); cmd != nil {
		r.state = huh.StateAborted
		return r, cmd
	}
	next, cmd := r.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		r.form = f
	}
	switch r.form.State {
	case huh.StateCompleted, huh.StateAborted:
		r.state = r.form.State
		return r, tea.Quit
	}
	return r, cmd
}

func (r *FormRunner) View() string {
	if r.state != huh.StateNormal {
		return ""
	}
	view := r.form.View()
	if r.footer != "" {
		view += "\n" + styles.HelpStyle.Render(r.footer)
	}
	return view
}

// Submitted reports whether the form was completed rather than canceled.
func (r *FormRunner) Submitted() bool {
	return r.state == huh.StateCompleted
}
