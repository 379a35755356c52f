package schema

import (
	"errors"
	"testing"

	"github.com/compozy/wrfconf/engine/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Section(t *testing.T) {
	t.Run("Should describe every section of the fixed set", func(t *testing.T) {
		reg := Default()
		for _, name := range SectionNames() {
			sec, err := reg.Section(name)
			require.NoError(t, err)
			assert.Equal(t, name, sec.Name)
			assert.NotEmpty(t, sec.Fields)
			for _, minimal := range sec.Minimal {
				_, ok := sec.Field(minimal)
				assert.True(t, ok, "%s.%s", name, minimal)
			}
		}
	})

	t.Run("Should fail for unknown sections", func(t *testing.T) {
		_, err := Default().Section("namelist_quilt")
		assert.True(t, errors.Is(err, ErrUnknownSection))
		assert.Panics(t, func() { Default().MustSection("fdda") })
	})

	t.Run("Should mark only the four substantive sections", func(t *testing.T) {
		var substantive []SectionName
		for _, sec := range Default().Sections() {
			if sec.Substantive {
				substantive = append(substantive, sec.Name)
			}
		}
		assert.Equal(t, []SectionName{TimeControl, DomainSetup, Physics, Dynamics}, substantive)
	})

	t.Run("Should keep defaults consistent with field types", func(t *testing.T) {
		for _, sec := range Default().Sections() {
			for _, f := range sec.Fields {
				if !f.HasDefault() {
					continue
				}
				assert.Equal(t, f.Seq, f.Default.IsSeq(), "%s.%s", sec.Name, f.Name)
				first, _ := f.Default.First()
				assert.Equal(t, f.Type, first.Type(), "%s.%s", sec.Name, f.Name)
				if f.Enum != nil {
					assert.True(t, f.Enum.Contains(field.Encode(first)), "%s.%s", sec.Name, f.Name)
				}
			}
		}
	})
}

func TestWithSingleDomain(t *testing.T) {
	t.Run("Should pin max_dom to one without touching the shared registry", func(t *testing.T) {
		pinned := New(WithSingleDomain())
		f, ok := pinned.MustSection(DomainSetup).Field("max_dom")
		require.True(t, ok)
		assert.Equal(t, 1.0, *f.Max)

		general, _ := Default().MustSection(DomainSetup).Field("max_dom")
		assert.Equal(t, 10.0, *general.Max)
	})
}

func TestEnum(t *testing.T) {
	t.Run("Should support reverse lookup from code to label", func(t *testing.T) {
		label, ok := Projections.Label("lambert")
		require.True(t, ok)
		assert.Equal(t, "Lambert Conformal", label)
		assert.Equal(t, "Thompson scheme", Microphysics.Describe("8"))
		assert.Equal(t, "99", Microphysics.Describe("99"))
		assert.False(t, DataSources.Contains("gfs"))
	})

	t.Run("Should expose every referenced enumeration by name", func(t *testing.T) {
		enums := Enumerations()
		for _, sec := range Default().Sections() {
			for _, f := range sec.Fields {
				if f.Enum != nil {
					assert.Same(t, f.Enum, enums[f.Enum.Name], "%s.%s", sec.Name, f.Name)
				}
			}
		}
		assert.Len(t, EnumerationNames(), len(enums))
	})
}

func TestField_UnitConversion(t *testing.T) {
	dom := Default().MustSection(DomainSetup)
	dx, _ := dom.Field("dx")

	t.Run("Should convert kilometres typed by the user into metres", func(t *testing.T) {
		raw, err := field.Decode("30", dx.DisplayType())
		require.NoError(t, err)
		assert.Equal(t, field.Float(30000), dx.ToCanonical(raw))
	})

	t.Run("Should scale decimals without binary rounding noise", func(t *testing.T) {
		assert.Equal(t, field.Float(12100), dx.ToCanonical(field.Float(12.1)))
		assert.Equal(t, field.Float(0.3), dx.ToDisplay(field.Float(300)))
	})

	t.Run("Should convert stored metres back for display", func(t *testing.T) {
		assert.Equal(t, "30", field.Encode(dx.ToDisplay(field.Float(30000))))
		assert.Equal(t, "2.5", field.Encode(dx.ToDisplay(field.Float(2500))))
	})

	t.Run("Should keep integer minutes for hour based inputs", func(t *testing.T) {
		hist, _ := Default().MustSection(TimeControl).Field("history_interval")
		raw, err := field.Decode("1.5", hist.DisplayType())
		require.NoError(t, err)
		assert.Equal(t, field.Int(90), hist.ToCanonical(raw))
		assert.Equal(t, field.Int(3), hist.ToDisplay(field.Int(180)))
		assert.Equal(t, field.Float(1.5), hist.ToDisplay(field.Int(90)))
	})

	t.Run("Should pass unscaled fields through", func(t *testing.T) {
		eWE, _ := dom.Field("e_we")
		assert.Equal(t, field.Int(100), eWE.ToCanonical(field.Int(100)))
	})
}

func TestParseSectionName(t *testing.T) {
	t.Run("Should accept only the fixed section names", func(t *testing.T) {
		name, err := ParseSectionName("physics")
		require.NoError(t, err)
		assert.Equal(t, Physics, name)
		_, err = ParseSectionName("physics_options")
		assert.Error(t, err)
	})
}

func TestRegistry_Describe(t *testing.T) {
	t.Run("Should describe every section and field", func(t *testing.T) {
		reg := Default()
		infos := reg.Describe()
		require.Len(t, infos, len(SectionNames()))
		assert.Equal(t, TimeControl, infos[0].Name)
		for i, info := range infos {
			assert.Len(t, info.Fields, len(reg.Sections()[i].Fields))
		}
		var proj FieldInfo
		for _, f := range infos[1].Fields {
			if f.Name == "map_proj" {
				proj = f
			}
		}
		assert.Equal(t, "map_proj", proj.Enum)
		assert.True(t, proj.Required)
		assert.False(t, proj.Default.IsSet())
	})
}
