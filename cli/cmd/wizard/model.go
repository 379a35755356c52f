package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/compozy/wrfconf/cli/tui/components"
	"github.com/compozy/wrfconf/cli/tui/models"
	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/session"
	"github.com/compozy/wrfconf/engine/validate"
)

const minHeaderHeight = 32

var stepLabels = map[gate.Step]string{
	gate.StepTime:     "Time",
	gate.StepDomain:   "Domain",
	gate.StepPhysics:  "Physics",
	gate.StepDynamics: "Dynamics",
	gate.StepBoundary: "Boundary",
	gate.StepQuilt:    "Quilting",
	gate.StepReview:   "Review",
}

type generatedMsg struct {
	resp *generate.Response
	err  error
}

// Model walks the user through every section and ends on a review page
// from which files can be generated.
type Model struct {
	models.BaseModel
	session    *session.Session
	generator  generate.Generator
	outputDir  string
	steps      []gate.Step
	index      int
	form       *components.SectionForm
	errs       validate.Result
	notice     string
	warnings   []string
	breadcrumb components.Breadcrumb
	review     viewport.Model
	generating bool
	result     *generate.Response
	genErr     error
}

// NewModel starts the wizard at step.
func NewModel(ctx context.Context, s *session.Session, generator generate.Generator, outputDir string, step gate.Step) *Model {
	steps := gate.Steps()
	labels := make([]string, len(steps))
	start := 0
	for i, st := range steps {
		labels[i] = stepLabels[st]
		if st == step {
			start = i
		}
	}
	m := &Model{
		BaseModel:  models.NewBaseModel(ctx),
		session:    s,
		generator:  generator,
		outputDir:  outputDir,
		steps:      steps,
		breadcrumb: components.NewBreadcrumb(labels...),
		review:     viewport.New(80, 20),
		warnings:   s.Warnings(),
	}
	m.enter(start)
	return m
}

func (m *Model) step() gate.Step {
	return m.steps[m.index]
}

// enter switches to step i and rebuilds its view from the session document.
func (m *Model) enter(i int) tea.Cmd {
	m.index = i
	doc := m.session.Document()
	m.breadcrumb.SetActive(i, func(j int) bool {
		return m.steps[j] != gate.StepReview && m.session.CanAdvance(m.steps[j])
	})
	name, ok := gate.SectionOf(m.step())
	if !ok {
		m.form = nil
		report := m.session.Validator().All(doc)
		m.review.SetContent(components.RenderReview(m.session.Registry(), doc, report))
		m.review.GotoTop()
		return nil
	}
	sec := m.session.Registry().MustSection(name)
	m.form = components.NewSectionForm(sec, doc.Section(name), m.session.Validator(), m.errs)
	if w, _ := m.Size(); w > 0 {
		m.form.Form().WithWidth(w)
	}
	return m.form.Form().Init()
}

// submit stores the completed form. The wizard stays on the step when the
// section does not validate or its minimal fields are still empty.
func (m *Model) submit() tea.Cmd {
	ctx := m.Context()
	name, _ := gate.SectionOf(m.step())
	partial, err := m.form.Partial()
	if err != nil {
		m.notice = err.Error()
		return m.enter(m.index)
	}
	res, err := m.session.Submit(ctx, name, partial)
	m.warnings = append(m.warnings, m.session.Warnings()...)
	if err != nil {
		m.notice = err.Error()
		return m.enter(m.index)
	}
	if !res.Valid() {
		m.errs = res
		m.notice = fmt.Sprintf("%d field(s) need attention", len(res))
		return m.enter(m.index)
	}
	m.errs = nil
	if missing := m.session.Gate().Missing(m.session.Document(), m.step()); len(missing) > 0 {
		m.notice = "Still required: " + strings.Join(missing, ", ")
		return m.enter(m.index)
	}
	m.notice = ""
	return m.enter(m.index + 1)
}

func (m *Model) generate() tea.Cmd {
	ctx := m.Context()
	doc := m.session.Document()
	svc := generate.NewService(m.session.Gate(), m.generator)
	outputDir := m.outputDir
	return func() tea.Msg {
		resp, err := svc.Run(ctx, doc, outputDir)
		return generatedMsg{resp: resp, err: err}
	}
}

func (m *Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Form().Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := m.BaseModel.Update(msg); cmd != nil {
		return m, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.breadcrumb.SetWidth(msg.Width)
		m.review.Width = msg.Width
		m.review.Height = max(msg.Height-8, 5)
		if m.form != nil {
			m.form.Form().WithWidth(msg.Width)
		}
	case generatedMsg:
		m.generating = false
		m.result, m.genErr = msg.resp, msg.err
		return m, nil
	}
	if m.form == nil {
		return m.updateReview(msg)
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		if m.index == 0 {
			return m, nil
		}
		m.notice, m.errs = "", nil
		return m, m.enter(m.index - 1)
	}
	_, cmd := m.form.Form().Update(msg)
	switch m.form.Form().State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
		m.Quit()
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			m.Quit()
			return m, tea.Quit
		case "b", "esc", "left":
			m.result, m.genErr = nil, nil
			return m, m.enter(m.index - 1)
		case "g":
			if m.generating || !m.session.CanGenerate() {
				return m, nil
			}
			m.generating = true
			m.result, m.genErr = nil, nil
			return m, m.generate()
		}
	}
	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if m.IsQuitting() {
		return ""
	}
	var parts []string
	if _, h := m.Size(); h >= minHeaderHeight {
		parts = append(parts, components.RenderASCIIHeader(0))
	}
	parts = append(parts, m.breadcrumb.View(), "")
	for _, w := range m.warnings {
		parts = append(parts, styles.WarningStyle.Render("! "+w))
	}
	if m.notice != "" {
		parts = append(parts, styles.ErrorStyle.Render(m.notice))
	}
	if m.form != nil {
		parts = append(parts, m.form.Form().View(), styles.HelpStyle.Render("esc back • ctrl+c quit"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	parts = append(parts, m.review.View(), m.reviewFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) reviewFooter() string {
	var lines []string
	switch {
	case m.generating:
		lines = append(lines, styles.HelpStyle.Render("Generating..."))
	case m.genErr != nil:
		lines = append(lines, styles.ErrorStyle.Render("✗ "+m.genErr.Error()))
	case m.result != nil:
		lines = append(lines, styles.SuccessStyle.Render("✓ Namelists generated"))
		for _, msg := range m.result.Messages {
			lines = append(lines, "  "+msg)
		}
	}
	help := "g generate • b back • q quit"
	if !m.session.CanGenerate() {
		help = "fix the marked fields to enable generation • b back • q quit"
	}
	lines = append(lines, styles.HelpStyle.Render(help))
	return strings.Join(lines, "\n")
}

// Result returns the outcome of the last generation, if any.
func (m *Model) Result() (*generate.Response, error) {
	return m.result, m.genErr
}
