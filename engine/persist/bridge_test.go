package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/document/documenttest"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

type failingSlot struct{ err error }

func (s failingSlot) Read(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingSlot) Write(context.Context, string, []byte) error  { return s.err }
func (s failingSlot) Close() error                                 { return nil }

func TestBridge(t *testing.T) {
	reg := schema.Default()
	ctx := context.Background()

	t.Run("Should report an empty slot as not found", func(t *testing.T) {
		b := NewBridge(NewFileSlot(afero.NewMemMapFs(), "/"), "", reg)
		_, _, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, DefaultKey, b.Key())
	})

	t.Run("Should save and load the document unchanged", func(t *testing.T) {
		b := NewBridge(NewFileSlot(afero.NewMemMapFs(), "/"), "", reg)
		doc, err := document.NewReducer(reg).Apply(document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lambert")),
			"dx":       field.Seq(field.Float(12500)),
		})
		require.NoError(t, err)
		require.NoError(t, b.Save(ctx, doc))

		loaded, warnings, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, doc.Revision(), loaded.Revision())
		assert.Equal(t, doc.Sections(), loaded.Sections())
	})

	t.Run("Should fall back to defaults when the slot is empty or corrupt", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		b := NewBridge(NewFileSlot(fs, "/"), "cfg", reg)
		doc, warnings := b.LoadOrDefault(ctx)
		assert.Equal(t, document.Default(reg).Sections(), doc.Sections())
		assert.Empty(t, warnings)

		require.NoError(t, afero.WriteFile(fs, "/cfg.json", []byte("{not json"), 0o600))
		doc, _ = b.LoadOrDefault(ctx)
		assert.Equal(t, document.Default(reg).Sections(), doc.Sections())
	})

	t.Run("Should migrate legacy documents on load", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		legacy := `{"_lastUpdated": 1, "physics_options": {"mp_physics_arr": [6]}, "domain_setup": {"map_proj": "polar"}}`
		require.NoError(t, afero.WriteFile(fs, "/global_wrf_config.json", []byte(legacy), 0o600))
		doc, warnings := NewBridge(NewFileSlot(fs, "/"), "", reg).LoadOrDefault(ctx)
		assert.Empty(t, warnings)
		mp, _ := doc.First(schema.Physics, "mp_physics")
		assert.Equal(t, int64(6), mp.Int())
	})

	t.Run("Should wrap slot failures in a write error", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewBridge(failingSlot{err: cause}, "cfg", reg).Save(ctx, document.Default(reg))
		var writeErr *WriteError
		require.ErrorAs(t, err, &writeErr)
		assert.Equal(t, "cfg", writeErr.Key)
		assert.ErrorIs(t, err, cause)
	})
}

func TestBridge_RoundTrip(t *testing.T) {
	reg := schema.Default()
	ctx := context.Background()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("loading a saved document reproduces every field", prop.ForAll(
		func(doc document.Document) bool {
			b := NewBridge(NewFileSlot(afero.NewMemMapFs(), "/state"), "", reg)
			if err := b.Save(ctx, doc); err != nil {
				return false
			}
			loaded, warnings, err := b.Load(ctx)
			if err != nil || len(warnings) > 0 || loaded.Revision() != doc.Revision() {
				return false
			}
			for _, name := range schema.SectionNames() {
				want, got := doc.Section(name), loaded.Section(name)
				if len(want) != len(got) {
					return false
				}
				for key, v := range want {
					if !v.Equal(got[key]) {
						return false
					}
				}
			}
			return true
		},
		documenttest.Documents(reg),
	))

	properties.TestingRun(t)
}
