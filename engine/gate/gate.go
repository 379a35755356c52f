// Package gate decides whether the wizard may leave a step and whether files may
// be generated. Every answer is computed from the document passed in.
package gate

import (
	"fmt"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

// Step identifies a wizard page.
type Step string

const (
	StepTime     Step = "time"
	StepDomain   Step = "domain"
	StepPhysics  Step = "physics"
	StepDynamics Step = "dynamics"
	StepBoundary Step = "boundary"
	StepQuilt    Step = "quilt"
	StepReview   Step = "review"
)

var stepSections = map[Step]schema.SectionName{
	StepTime:     schema.TimeControl,
	StepDomain:   schema.DomainSetup,
	StepPhysics:  schema.Physics,
	StepDynamics: schema.Dynamics,
	StepBoundary: schema.BoundaryControl,
	StepQuilt:    schema.QuiltControl,
}

var stepOrder = []Step{StepTime, StepDomain, StepPhysics, StepDynamics, StepBoundary, StepQuilt, StepReview}

// Steps returns the wizard pages in order.
func Steps() []Step {
	return append([]Step(nil), stepOrder...)
}

// SectionOf returns the section edited on step. The review step edits none.
func SectionOf(step Step) (schema.SectionName, bool) {
	name, ok := stepSections[step]
	return name, ok
}

// ParseStep validates a user-supplied step name. Section names are accepted too.
func ParseStep(s string) (Step, error) {
	for _, step := range stepOrder {
		if string(step) == s || string(stepSections[step]) == s {
			return step, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", s)
}

// Gate evaluates readiness predicates.
type Gate struct {
	reg       *schema.Registry
	validator *validate.Validator
}

func New(reg *schema.Registry, v *validate.Validator) *Gate {
	return &Gate{reg: reg, validator: v}
}

// Missing lists the minimal fields of step's section that hold no value.
func (g *Gate) Missing(doc document.Document, step Step) []string {
	name, ok := stepSections[step]
	if !ok {
		return nil
	}
	sec := doc.Section(name)
	var missing []string
	for _, fieldName := range g.reg.MustSection(name).Minimal {
		if !sec[fieldName].IsSet() {
			missing = append(missing, fieldName)
		}
	}
	return missing
}

// CanAdvance reports whether the user may leave step: its section validates
// and its minimal fields are set. Leaving the review step means generating.
func (g *Gate) CanAdvance(doc document.Document, step Step) bool {
	if step == StepReview {
		return g.CanGenerate(doc)
	}
	name, ok := stepSections[step]
	if !ok {
		return false
	}
	return g.validator.Section(doc, name).Valid() && len(g.Missing(doc, step)) == 0
}

// Blockers returns the validation results of the sections that gate generation.
func (g *Gate) Blockers(doc document.Document) validate.Report {
	out := validate.Report{}
	for _, sec := range g.reg.Sections() {
		if sec.Substantive {
			out[sec.Name] = g.validator.Section(doc, sec.Name)
		}
	}
	return out
}

// CanGenerate reports whether every substantive section validates.
func (g *Gate) CanGenerate(doc document.Document) bool {
	return g.Blockers(doc).Valid()
}
