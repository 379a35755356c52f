// Package persist stores the configuration document in a single named slot.
package persist

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the slot holds no document.
var ErrNotFound = errors.New("document not found")

// Slot is a durable key-value location read and written wholesale.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Driver names a slot backend.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Options select and configure a slot backend.
type Options struct {
	Driver   Driver
	Path     string
	RedisURL string
}

// Open builds the slot named by opts.Driver.
func Open(ctx context.Context, opts Options) (Slot, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileSlot(nil, opts.Path), nil
	case DriverSQLite:
		return NewSQLiteSlot(ctx, opts.Path)
	case DriverRedis:
		return DialRedisSlot(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// WriteError reports a failed save. The in-memory document stays authoritative.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
