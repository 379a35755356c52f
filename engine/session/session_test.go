package session

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/persist"
	"github.com/compozy/wrfconf/engine/schema"
)

type brokenStore struct{ saves int }

func (b *brokenStore) LoadOrDefault(context.Context) (document.Document, []string) {
	return document.Default(schema.Default()), nil
}

func (b *brokenStore) Save(context.Context, document.Document) error {
	b.saves++
	return &persist.WriteError{Key: "cfg", Err: errors.New("quota exceeded")}
}

func memoryBridge(fs afero.Fs) *persist.Bridge {
	return persist.NewBridge(persist.NewFileSlot(fs, "/"), "", schema.Default())
}

func TestSession_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply a valid update and save it", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		s := Open(ctx, Deps{Store: memoryBridge(fs)})
		res, err := s.Submit(ctx, schema.DomainSetup, document.Section{"map_proj": field.Of(field.String("lambert"))})
		require.NoError(t, err)
		assert.True(t, res.Valid())
		assert.Equal(t, uint64(1), s.Document().Revision())
		assert.True(t, s.CanAdvance(gate.StepDomain))

		reopened := Open(ctx, Deps{Store: memoryBridge(fs)})
		proj, _ := reopened.Document().First(schema.DomainSetup, "map_proj")
		assert.Equal(t, "lambert", proj.Str())
	})

	t.Run("Should keep the document when the section would be invalid", func(t *testing.T) {
		s := New(Deps{})
		res, err := s.Submit(ctx, schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lambert")),
			"e_we":     field.Seq(field.Int(2)),
		})
		require.NoError(t, err)
		assert.Equal(t, "must be ≥ 3", res["e_we"])
		assert.Equal(t, uint64(0), s.Document().Revision())
		_, ok := s.Document().Get(schema.DomainSetup, "map_proj")
		assert.False(t, ok)
	})

	t.Run("Should reject unknown fields without changing the document", func(t *testing.T) {
		s := New(Deps{})
		_, err := s.Submit(ctx, schema.Physics, document.Section{"chat": field.Of(field.String("hi"))})
		assert.ErrorIs(t, err, document.ErrUnknownField)
		assert.Equal(t, uint64(0), s.Document().Revision())
	})

	t.Run("Should keep the update and warn when saving fails", func(t *testing.T) {
		store := &brokenStore{}
		s := Open(ctx, Deps{Store: store})
		_, err := s.Submit(ctx, schema.Physics, document.Section{"mp_physics": field.Seq(field.Int(6))})
		require.NoError(t, err)
		mp, _ := s.Document().First(schema.Physics, "mp_physics")
		assert.Equal(t, int64(6), mp.Int())
		assert.Equal(t, 1, store.saves)

		warnings := s.Warnings()
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "quota exceeded")
		assert.Empty(t, s.Warnings())
	})
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reach generation readiness through submissions", func(t *testing.T) {
		s := New(Deps{})
		assert.False(t, s.CanGenerate())
		_, err := s.Submit(ctx, schema.DomainSetup, document.Section{"map_proj": field.Of(field.String("mercator"))})
		require.NoError(t, err)
		assert.True(t, s.CanGenerate())
	})

	t.Run("Should replace and reset with growing revisions", func(t *testing.T) {
		s := New(Deps{})
		require.NoError(t, s.Apply(ctx, schema.QuiltControl, document.Section{"nio_groups": field.Of(field.Int(3))}))
		loaded, err := document.FromMap(s.Registry(), map[string]map[string]any{"domain_setup": {"map_proj": "polar"}})
		require.NoError(t, err)
		s.Replace(ctx, loaded)
		assert.Equal(t, uint64(2), s.Document().Revision())
		s.Reset(ctx)
		assert.Equal(t, uint64(3), s.Document().Revision())
		_, ok := s.Document().Get(schema.DomainSetup, "map_proj")
		assert.False(t, ok)
	})

	t.Run("Should start from defaults when the slot is corrupt", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/global_wrf_config.json", []byte("garbage"), 0o600))
		s := Open(ctx, Deps{Store: memoryBridge(fs)})
		assert.Equal(t, document.Default(schema.Default()).Sections(), s.Document().Sections())
		assert.Empty(t, s.Warnings())
	})

	t.Run("Should pin the domain count with a single domain registry", func(t *testing.T) {
		s := New(Deps{Registry: schema.New(schema.WithSingleDomain())})
		res, err := s.Submit(ctx, schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lambert")),
			"max_dom":  field.Of(field.Int(2)),
		})
		require.NoError(t, err)
		assert.Equal(t, "must be ≤ 1", res["max_dom"])
	})
}
