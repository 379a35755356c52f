package validate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

func apply(t *testing.T, doc document.Document, name schema.SectionName, partial document.Section) document.Document {
	t.Helper()
	next, err := document.NewReducer(schema.Default()).Apply(doc, name, partial)
	require.NoError(t, err)
	return next
}

func validDocument(t *testing.T) document.Document {
	t.Helper()
	doc := document.Default(schema.Default())
	doc = apply(t, doc, schema.TimeControl, document.Section{
		"start_date_str": field.Seq(field.DateString("2024-06-01_00:00:00")),
		"end_date_str":   field.Seq(field.DateString("2024-06-02_00:00:00")),
	})
	doc = apply(t, doc, schema.DomainSetup, document.Section{
		"map_proj": field.Of(field.String("lambert")),
		"e_we":     field.Seq(field.Int(100)),
		"dx":       field.Seq(field.Float(30000)),
	})
	doc = apply(t, doc, schema.Physics, document.Section{"mp_physics": field.Seq(field.Int(8))})
	return apply(t, doc, schema.Dynamics, document.Section{"diff_opt": field.Seq(field.Int(1))})
}

func TestValidator_Section(t *testing.T) {
	reg := schema.Default()
	v := New(reg)

	t.Run("Should report an end date earlier than the start date on the end field", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.TimeControl, document.Section{
			"start_date_str": field.Seq(field.DateString("2024-06-02_00:00:00")),
			"end_date_str":   field.Seq(field.DateString("2024-06-01_00:00:00")),
		})
		res := v.Section(doc, schema.TimeControl)
		assert.Equal(t, Result{"end_date_str": "end date must be later than start date"}, res)
	})

	t.Run("Should reject equal start and end dates", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.TimeControl, document.Section{
			"start_date_str": field.Seq(field.DateString("2024-06-01_00:00:00")),
			"end_date_str":   field.Seq(field.DateString("2024-06-01_00:00:00")),
		})
		assert.Contains(t, v.Section(doc, schema.TimeControl), "end_date_str")
	})

	t.Run("Should report bad date formats before ordering", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.TimeControl, document.Section{
			"end_date_str": field.Seq(field.DateString("2024-02-30_00:00:00")),
		})
		res := v.Section(doc, schema.TimeControl)
		assert.Equal(t, "must be a valid date in the form YYYY-MM-DD_HH:MM:SS", res["end_date_str"])
	})

	t.Run("Should enforce the minimum grid size", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lambert")),
			"e_we":     field.Seq(field.Int(2)),
		})
		assert.Equal(t, "must be ≥ 3", v.Section(doc, schema.DomainSetup)["e_we"])

		doc = apply(t, doc, schema.DomainSetup, document.Section{"e_we": field.Seq(field.Int(3))})
		assert.NotContains(t, v.Section(doc, schema.DomainSetup), "e_we")
	})

	t.Run("Should reject per-domain values beyond max_dom", func(t *testing.T) {
		doc := apply(t, validDocument(t), schema.DomainSetup, document.Section{
			"e_we": field.Seq(field.Int(100), field.Int(61)),
		})
		assert.Equal(t, Result{"e_we": "has 2 domain values but max_dom is 1"}, v.Section(doc, schema.DomainSetup))

		doc = apply(t, doc, schema.Physics, document.Section{"mp_physics": field.Seq(field.Int(8), field.Int(8), field.Int(8))})
		doc = apply(t, doc, schema.DomainSetup, document.Section{"max_dom": field.Of(field.Int(2))})
		assert.Empty(t, v.Section(doc, schema.DomainSetup))
		assert.Equal(t, "has 3 domain values but max_dom is 2", v.Section(doc, schema.Physics)["mp_physics"])
	})

	t.Run("Should accept fewer per-domain values than domains", func(t *testing.T) {
		doc := apply(t, validDocument(t), schema.DomainSetup, document.Section{"max_dom": field.Of(field.Int(3))})
		assert.Empty(t, v.Section(doc, schema.DomainSetup))
		assert.True(t, v.All(doc).Valid())
	})

	t.Run("Should require strictly positive grid spacing", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lambert")),
			"dx":       field.Seq(field.Float(0)),
			"dy":       field.Seq(field.Float(-5)),
		})
		res := v.Section(doc, schema.DomainSetup)
		assert.Equal(t, "must be > 0", res["dx"])
		assert.Equal(t, "must be > 0", res["dy"])
	})

	t.Run("Should report every failing field of a section", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"e_we":    field.Seq(field.Int(1)),
			"max_dom": field.Of(field.Int(11)),
		})
		res := v.Section(doc, schema.DomainSetup)
		assert.Equal(t, []string{"e_we", "map_proj", "max_dom"}, res.Fields())
		assert.Equal(t, "is required", res["map_proj"])
		assert.Equal(t, "must be ≤ 10", res["max_dom"])
	})

	t.Run("Should reject projections outside the enumeration", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("rotated")),
		})
		assert.Equal(t, "must be one of lambert, polar, mercator, lat-lon", v.Section(doc, schema.DomainSetup)["map_proj"])
	})

	t.Run("Should skip true latitudes for projections that do not use them", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("lat-lon")),
			"truelat1": field.Of(field.Float(120)),
		})
		assert.Empty(t, v.Section(doc, schema.DomainSetup))

		doc = apply(t, doc, schema.DomainSetup, document.Section{"map_proj": field.Of(field.String("lambert"))})
		assert.Equal(t, "must be ≤ 90", v.Section(doc, schema.DomainSetup)["truelat1"])
	})

	t.Run("Should validate sequence elements and name the failing domain", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.DomainSetup, document.Section{
			"map_proj": field.Of(field.String("mercator")),
			"e_sn":     field.Seq(field.Int(100), field.Int(1)),
		})
		assert.Equal(t, "domain 2: must be ≥ 3", v.Section(doc, schema.DomainSetup)["e_sn"])
	})

	t.Run("Should check the boundary zone width", func(t *testing.T) {
		doc := apply(t, document.Default(reg), schema.BoundaryControl, document.Section{
			"relax_zone": field.Of(field.Int(6)),
		})
		assert.Equal(t, Result{"spec_bdy_width": "must equal spec_zone + relax_zone (7)"}, v.Section(doc, schema.BoundaryControl))
	})

	t.Run("Should pin the domain count in a single domain deployment", func(t *testing.T) {
		single := schema.New(schema.WithSingleDomain())
		doc := apply(t, validDocument(t), schema.DomainSetup, document.Section{"max_dom": field.Of(field.Int(2))})
		assert.Equal(t, "must be ≤ 1", New(single).Section(doc, schema.DomainSetup)["max_dom"])
		assert.NotContains(t, v.Section(doc, schema.DomainSetup), "max_dom")
	})
}

func TestValidator_All(t *testing.T) {
	reg := schema.Default()
	v := New(reg)

	t.Run("Should flag the default document only for the missing projection", func(t *testing.T) {
		report := v.All(document.Default(reg))
		assert.False(t, report.Valid())
		assert.Equal(t, 1, report.Count())
		assert.Equal(t, Result{"map_proj": "is required"}, report[schema.DomainSetup])
	})

	t.Run("Should accept a complete document", func(t *testing.T) {
		report := v.All(validDocument(t))
		assert.True(t, report.Valid())
		assert.Len(t, report, len(schema.SectionNames()))
	})

	t.Run("Should narrow a report to selected sections", func(t *testing.T) {
		report := v.All(document.Default(reg)).Only(schema.Physics, schema.Dynamics)
		assert.True(t, report.Valid())
		assert.Len(t, report, 2)
	})
}

func TestValidator_Field(t *testing.T) {
	v := New(schema.Default())

	t.Run("Should check a candidate value without a document", func(t *testing.T) {
		msg, failed := v.Field(schema.Dynamics, "dampcoef", field.Seq(field.Float(1.5)))
		assert.True(t, failed)
		assert.Equal(t, "must be ≤ 1", msg)
		_, failed = v.Field(schema.Dynamics, "dampcoef", field.Seq(field.Float(0.5)))
		assert.False(t, failed)
	})
}

func TestValidator_Idempotent(t *testing.T) {
	reg := schema.Default()
	v := New(reg)
	reducer := document.NewReducer(reg)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("validating twice yields the same result", prop.ForAll(
		func(ewe int64, dx float64, maxDom int64) bool {
			doc, err := reducer.Apply(document.Default(reg), schema.DomainSetup, document.Section{
				"e_we":    field.Seq(field.Int(ewe)),
				"dx":      field.Seq(field.Float(dx)),
				"max_dom": field.Of(field.Int(maxDom)),
			})
			if err != nil {
				return false
			}
			first := v.All(doc)
			second := v.All(doc)
			if len(first) != len(second) {
				return false
			}
			for name, res := range first {
				if len(res) != len(second[name]) {
					return false
				}
				for k, msg := range res {
					if second[name][k] != msg {
						return false
					}
				}
			}
			return true
		},
		gen.Int64Range(-10, 500),
		gen.Float64Range(-1000, 100000),
		gen.Int64Range(0, 12),
	))

	properties.TestingRun(t)
}
