package generate

import (
	"context"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/pkg/logger"
)

// Service checks readiness before handing a document to a generator.
type Service struct {
	gate      *gate.Gate
	generator Generator
}

func NewService(g *gate.Gate, generator Generator) *Service {
	return &Service{gate: g, generator: generator}
}

// Run generates files for doc. It returns *NotReadyError without contacting
// the generator when a substantive section is invalid. The document is never
// modified, so a failed run can simply be retried.
func (s *Service) Run(ctx context.Context, doc document.Document, outputDir string) (*Response, error) {
	log := logger.FromContext(ctx)
	if blockers := s.gate.Blockers(doc); !blockers.Valid() {
		return nil, &NotReadyError{Blockers: blockers}
	}
	log.Info("Generating namelists", "revision", doc.Revision(), "output_dir", outputDir)
	resp, err := s.generator.Generate(ctx, Request{Document: doc, OutputDir: outputDir})
	if err != nil {
		log.Warn("Generation failed", "error", err)
		return nil, err
	}
	return resp, nil
}
