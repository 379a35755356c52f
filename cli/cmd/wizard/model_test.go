package wizard

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/session"
)

func newTestModel(t *testing.T, step gate.Step) (*Model, *session.Session) {
	t.Helper()
	s := session.New(session.Deps{Registry: schema.Default()})
	g, err := generate.NewLocalGenerator(generate.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	return NewModel(context.Background(), s, g, "", step), s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_Submit(t *testing.T) {
	t.Run("Should advance after a valid section", func(t *testing.T) {
		m, s := newTestModel(t, gate.StepTime)
		m.submit()
		assert.Equal(t, gate.StepDomain, m.step())
		assert.Empty(t, m.notice)
		assert.Equal(t, uint64(1), s.Document().Revision())
	})

	t.Run("Should stay and mark fields when validation fails", func(t *testing.T) {
		m, s := newTestModel(t, gate.StepTime)
		require.NoError(t, m.form.SetRaw("end_date_str", "2001-10-24_00:00:00"))
		m.submit()
		assert.Equal(t, gate.StepTime, m.step())
		assert.Contains(t, m.errs, "end_date_str")
		assert.Equal(t, "1 field(s) need attention", m.notice)
		assert.Equal(t, uint64(0), s.Document().Revision())
	})

	t.Run("Should report undecodable input", func(t *testing.T) {
		m, _ := newTestModel(t, gate.StepDomain)
		require.NoError(t, m.form.SetRaw("e_we", "lots"))
		m.submit()
		assert.Equal(t, gate.StepDomain, m.step())
		assert.Contains(t, m.notice, "e_we")
	})

	t.Run("Should go back on escape", func(t *testing.T) {
		m, _ := newTestModel(t, gate.StepPhysics)
		m.Update(key("esc"))
		assert.Equal(t, gate.StepDomain, m.step())
	})
}

func TestModel_Review(t *testing.T) {
	t.Run("Should not generate while the document is incomplete", func(t *testing.T) {
		m, _ := newTestModel(t, gate.StepReview)
		_, cmd := m.Update(key("g"))
		assert.Nil(t, cmd)
		assert.Contains(t, m.reviewFooter(), "fix the marked fields")
	})

	t.Run("Should generate once every section is valid", func(t *testing.T) {
		m, _ := newTestModel(t, gate.StepDomain)
		require.NoError(t, m.form.SetRaw("map_proj", "lambert"))
		require.NoError(t, m.form.SetRaw("geog_data_path", "/data/geog"))
		m.submit()
		require.Equal(t, gate.StepPhysics, m.step())
		m.enter(len(m.steps) - 1)

		_, cmd := m.Update(key("g"))
		require.NotNil(t, cmd)
		assert.True(t, m.generating)
		m.Update(cmd())
		resp, err := m.Result()
		require.NoError(t, err)
		assert.Contains(t, resp.FileContents, generate.FileWPS)
		assert.Contains(t, m.reviewFooter(), "Namelists generated")
	})

	t.Run("Should return to the last section", func(t *testing.T) {
		m, _ := newTestModel(t, gate.StepReview)
		m.Update(key("b"))
		assert.Equal(t, gate.StepQuilt, m.step())
	})
}
