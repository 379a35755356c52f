package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/pkg/logger"
)

// DefaultKey is the slot key the wizard uses.
const DefaultKey = "global_wrf_config"

// Bridge loads and saves whole documents through a slot.
type Bridge struct {
	slot Slot
	key  string
	reg  *schema.Registry
}

func NewBridge(slot Slot, key string, reg *schema.Registry) *Bridge {
	if key == "" {
		key = DefaultKey
	}
	return &Bridge{slot: slot, key: key, reg: reg}
}

// Key returns the slot key.
func (b *Bridge) Key() string {
	return b.key
}

// Load reads the stored document. It returns ErrNotFound when the slot is
// empty; legacy shapes are migrated and reported as warnings.
func (b *Bridge) Load(ctx context.Context) (document.Document, []string, error) {
	data, err := b.slot.Read(ctx, b.key)
	if err != nil {
		return document.Document{}, nil, err
	}
	doc, warnings, err := document.Decode(b.reg, data)
	if err != nil {
		return document.Document{}, warnings, fmt.Errorf("load %q: %w", b.key, err)
	}
	return doc, warnings, nil
}

// LoadOrDefault is Load falling back to the default document on any failure.
func (b *Bridge) LoadOrDefault(ctx context.Context) (document.Document, []string) {
	log := logger.FromContext(ctx)
	doc, warnings, err := b.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug("No stored configuration, using defaults", "key", b.key)
		return document.Default(b.reg), nil
	case err != nil:
		log.Debug("Stored configuration unreadable, using defaults", "key", b.key, "error", err)
		return document.Default(b.reg), nil
	}
	for _, w := range warnings {
		log.Debug("Migrated stored configuration", "key", b.key, "note", w)
	}
	return doc, warnings
}

// Save overwrites the slot with doc. Failures come back as *WriteError.
func (b *Bridge) Save(ctx context.Context, doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return &WriteError{Key: b.key, Err: err}
	}
	if err := b.slot.Write(ctx, b.key, data); err != nil {
		return &WriteError{Key: b.key, Err: err}
	}
	return nil
}

// Close releases the slot.
func (b *Bridge) Close() error {
	return b.slot.Close()
}
