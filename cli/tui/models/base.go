// Package models holds state shared by the bubbletea programs.
package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects between interactive and machine-readable output.
type Mode string

const (
	ModeTUI  Mode = "tui"
	ModeJSON Mode = "json"
)

// BaseModel tracks the terminal size and quit state of a program.
type BaseModel struct {
	ctx      context.Context
	width    int
	height   int
	quitting bool
}

func NewBaseModel(ctx context.Context) BaseModel {
	return BaseModel{ctx: ctx}
}

func (m BaseModel) Context() context.Context {
	return m.ctx
}

// Size returns the last reported terminal size, zero before the first resize.
func (m BaseModel) Size() (width, height int) {
	return m.width, m.height
}

func (m BaseModel) IsQuitting() bool {
	return m.quitting
}

func (m *BaseModel) Quit() {
	m.quitting = true
}

// Update records window sizes and quits on ctrl+c. A non-nil command means
// the caller should stop handling msg.
func (m *BaseModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quit()
			return tea.Quit
		}
	}
	return nil
}
