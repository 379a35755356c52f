// Package session owns the document for the lifetime of one wizard run. It is
// created once and handed to every step; there is no package-level state.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/persist"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
	"github.com/compozy/wrfconf/pkg/logger"
)

// Store is the persistence the session saves through.
type Store interface {
	LoadOrDefault(ctx context.Context) (document.Document, []string)
	Save(ctx context.Context, doc document.Document) error
}

// Session holds the current document and runs validate-then-apply updates.
type Session struct {
	mu        sync.Mutex
	doc       document.Document
	reducer   *document.Reducer
	validator *validate.Validator
	gate      *gate.Gate
	store     Store
	warnings  []string
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Registry  *schema.Registry
	Reducer   *document.Reducer
	Validator *validate.Validator
	Store     Store
}

// New builds a session. Missing collaborators are derived from the registry;
// a nil store keeps the document in memory only.
func New(deps Deps) *Session {
	reg := deps.Registry
	if reg == nil {
		reg = schema.Default()
	}
	reducer := deps.Reducer
	if reducer == nil {
		reducer = document.NewReducer(reg)
	}
	v := deps.Validator
	if v == nil {
		v = validate.New(reg)
	}
	return &Session{
		doc:       document.Default(reg),
		reducer:   reducer,
		validator: v,
		gate:      gate.New(reg, v),
		store:     deps.Store,
	}
}

// Open builds a session and restores the stored document. Loading never
// fails: an empty or unreadable slot yields the default document.
func Open(ctx context.Context, deps Deps) *Session {
	s := New(deps)
	if s.store == nil {
		return s
	}
	loaded, notes := s.store.LoadOrDefault(ctx)
	s.doc = loaded
	s.warnings = append(s.warnings, notes...)
	return s
}

// Document returns the current revision.
func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Session) Validator() *validate.Validator { return s.validator }

func (s *Session) Gate() *gate.Gate { return s.gate }

func (s *Session) Registry() *schema.Registry { return s.reducer.Registry() }

// Submit validates partial merged into the section and applies it only when
// the section comes out valid. The returned result is empty on success.
func (s *Session) Submit(ctx context.Context, name schema.SectionName, partial document.Section) (validate.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, err := s.reducer.Apply(s.doc, name, partial)
	if err != nil {
		return nil, err
	}
	if res := s.validator.Section(candidate, name); !res.Valid() {
		return res, nil
	}
	s.commit(ctx, candidate)
	return validate.Result{}, nil
}

// Apply merges partial without validating first. Used by non-interactive
// edits that validate afterwards.
func (s *Session) Apply(ctx context.Context, name schema.SectionName, partial document.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.reducer.Apply(s.doc, name, partial)
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	return nil
}

// Replace swaps in a whole document, e.g. an imported template.
func (s *Session) Replace(ctx context.Context, loaded document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, s.reducer.Replace(s.doc, loaded))
}

// Reset restores the default document.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, s.reducer.Reset(s.doc))
}

// commit installs next and saves it. A failed save is kept as a warning and
// never rolls the document back.
func (s *Session) commit(ctx context.Context, next document.Document) {
	s.doc = next
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, next); err != nil {
		var writeErr *persist.WriteError
		if !errors.As(err, &writeErr) {
			writeErr = &persist.WriteError{Err: err}
		}
		logger.FromContext(ctx).Warn("Failed to save configuration", "revision", next.Revision(), "error", err)
		s.warnings = append(s.warnings, writeErr.Error())
	}
}

// Warnings drains the transient warnings collected since the last call.
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.warnings
	s.warnings = nil
	return out
}

// CanAdvance reports whether step may be left with the current document.
func (s *Session) CanAdvance(step gate.Step) bool {
	return s.gate.CanAdvance(s.Document(), step)
}

// CanGenerate reports whether the current document may be generated.
func (s *Session) CanGenerate() bool {
	return s.gate.CanGenerate(s.Document())
}
