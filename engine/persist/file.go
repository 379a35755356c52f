package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	lockRetryDelay = 50 * time.Millisecond
	lockTimeout    = 5 * time.Second
)

// FileSlot keeps each key in a JSON file under a directory.
type FileSlot struct {
	fs  afero.Fs
	dir string
}

// NewFileSlot stores files under dir. A nil filesystem means the OS filesystem.
func NewFileSlot(fsys afero.Fs, dir string) *FileSlot {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if dir == "" {
		dir = "."
	}
	return &FileSlot{fs: fsys, dir: dir}
}

func (s *FileSlot) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileSlot) Read(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the file through a rename so readers never see a partial
// document. On the OS filesystem writers are serialised with a lock file.
func (s *FileSlot) Write(ctx context.Context, key string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("file: create %s: %w", s.dir, err)
	}
	target := s.path(key)
	if _, ok := s.fs.(*afero.OsFs); ok {
		lock := flock.New(target + ".lock")
		lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("file: lock %s: %w", key, err)
		}
		if !locked {
			return fmt.Errorf("file: lock %s: busy", key)
		}
		defer lock.Unlock()
	}
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("file: write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("file: replace %s: %w", key, err)
	}
	return nil
}

func (s *FileSlot) Close() error { return nil }

// DefaultDir is the per-user directory used when no store path is configured.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wrfconf")
	}
	return ".wrfconf"
}
