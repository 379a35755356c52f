package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

func TestSectionForm_Partial(t *testing.T) {
	reg := schema.Default()
	v := validate.New(reg)
	doc := document.Default(reg)

	t.Run("Should round-trip the current values", func(t *testing.T) {
		for _, sec := range reg.Sections() {
			current := doc.Section(sec.Name)
			sf := NewSectionForm(sec, current, v, nil)
			partial, err := sf.Partial()
			require.NoError(t, err, sec.Name)
			for name, want := range current {
				assert.True(t, want.Equal(partial[name]), "%s.%s", sec.Name, name)
			}
		}
	})

	t.Run("Should convert typed input into stored units", func(t *testing.T) {
		sf := NewSectionForm(reg.MustSection(schema.DomainSetup), doc.Section(schema.DomainSetup), v, nil)
		require.NoError(t, sf.SetRaw("dx", "12"))
		require.NoError(t, sf.SetRaw("map_proj", "mercator"))
		partial, err := sf.Partial()
		require.NoError(t, err)
		assert.Equal(t, field.Seq(field.Float(12000)), partial["dx"])
		assert.Equal(t, field.Of(field.String("mercator")), partial["map_proj"])
	})

	t.Run("Should report undecodable input as a type error", func(t *testing.T) {
		sf := NewSectionForm(reg.MustSection(schema.DomainSetup), doc.Section(schema.DomainSetup), v, nil)
		require.NoError(t, sf.SetRaw("e_we", "many"))
		_, err := sf.Partial()
		assert.ErrorIs(t, err, document.ErrFieldType)
	})

	t.Run("Should reject unknown fields", func(t *testing.T) {
		sf := NewSectionForm(reg.MustSection(schema.Physics), doc.Section(schema.Physics), v, nil)
		assert.ErrorIs(t, sf.SetRaw("bogus", "1"), document.ErrUnknownField)
	})
}

func TestSectionForm_Check(t *testing.T) {
	reg := schema.Default()
	sf := NewSectionForm(reg.MustSection(schema.DomainSetup), nil, validate.New(reg), nil)
	eWE, _ := reg.MustSection(schema.DomainSetup).Field("e_we")

	t.Run("Should accept valid input", func(t *testing.T) {
		assert.NoError(t, sf.check(eWE, "120, 90"))
	})

	t.Run("Should surface rule messages", func(t *testing.T) {
		err := sf.check(eWE, "")
		require.Error(t, err)
		assert.Equal(t, "is required", err.Error())
	})
}

func TestRenderReview(t *testing.T) {
	t.Run("Should list every section with labels and errors", func(t *testing.T) {
		reg := schema.Default()
		doc := document.Default(reg)
		report := validate.New(reg).All(doc)
		out := RenderReview(reg, doc, report)
		for _, sec := range reg.Sections() {
			assert.Contains(t, out, sec.Title)
		}
		assert.Contains(t, out, "is required")
		assert.Contains(t, out, "not set")
	})
}

func TestBreadcrumb(t *testing.T) {
	t.Run("Should mark completed steps", func(t *testing.T) {
		b := NewBreadcrumb("Time", "Domain", "Review")
		b.SetActive(1, func(i int) bool { return i == 0 })
		out := b.View()
		assert.Contains(t, out, "✓ Time")
		assert.True(t, strings.Index(out, "Domain") < strings.Index(out, "Review"))
	})

	t.Run("Should truncate from the left", func(t *testing.T) {
		b := NewBreadcrumb("Time control", "Domain setup", "Physics", "Dynamics", "Review")
		b.SetWidth(24)
		b.SetActive(4, nil)
		assert.True(t, strings.HasPrefix(b.View(), "..."))
	})
}
