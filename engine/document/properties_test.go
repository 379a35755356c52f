package document_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/document/documenttest"
	"github.com/compozy/wrfconf/engine/schema"
)

func sectionsEqual(a, b document.Section) bool {
	if len(a) != len(b) {
		return false
	}
	for key, v := range a {
		w, ok := b[key]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

func TestReducer_MergeProperties(t *testing.T) {
	reg := schema.Default()
	reducer := document.NewReducer(reg)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("updates leave every other section identical", prop.ForAll(
		func(before document.Document, u documenttest.Update) bool {
			after, err := reducer.Apply(before, u.Section, u.Fields)
			if err != nil {
				return false
			}
			for _, name := range schema.SectionNames() {
				if name != u.Section && !sectionsEqual(before.Section(name), after.Section(name)) {
					return false
				}
			}
			return true
		},
		documenttest.Documents(reg),
		documenttest.AnyUpdate(reg),
	))

	properties.Property("updated fields read back and untouched fields keep their values", prop.ForAll(
		func(before document.Document, u documenttest.Update) bool {
			after, err := reducer.Apply(before, u.Section, u.Fields)
			if err != nil {
				return false
			}
			got := after.Section(u.Section)
			for key, old := range before.Section(u.Section) {
				want, updated := u.Fields[key]
				if !updated {
					want = old
				}
				if !got[key].Equal(want) {
					return false
				}
			}
			for key, want := range u.Fields {
				if !got[key].Equal(want) {
					return false
				}
			}
			return true
		},
		documenttest.Documents(reg),
		documenttest.AnyUpdate(reg),
	))

	properties.Property("updates never mutate the input document", prop.ForAll(
		func(before document.Document, u documenttest.Update) bool {
			snapshot := before.Section(u.Section).Clone()
			if _, err := reducer.Apply(before, u.Section, u.Fields); err != nil {
				return false
			}
			return sectionsEqual(snapshot, before.Section(u.Section))
		},
		documenttest.Documents(reg),
		documenttest.AnyUpdate(reg),
	))

	properties.TestingRun(t)
}
