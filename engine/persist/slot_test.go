package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotContract(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, slot.Write(ctx, "cfg", []byte(`{"a":1}`)))
	data, err := slot.Read(ctx, "cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, slot.Write(ctx, "cfg", []byte(`{"a":2}`)))
	data, err = slot.Read(ctx, "cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))
}

func TestFileSlot(t *testing.T) {
	t.Run("Should round-trip on an in-memory filesystem", func(t *testing.T) {
		slotContract(t, NewFileSlot(afero.NewMemMapFs(), "/state"))
	})

	t.Run("Should round-trip on disk with a lock file", func(t *testing.T) {
		dir := t.TempDir()
		slot := NewFileSlot(nil, dir)
		slotContract(t, slot)
		exists, err := afero.Exists(afero.NewOsFs(), filepath.Join(dir, "cfg.json"))
		require.NoError(t, err)
		assert.True(t, exists)
		leftover, err := afero.Exists(afero.NewOsFs(), filepath.Join(dir, "cfg.json.tmp"))
		require.NoError(t, err)
		assert.False(t, leftover)
	})

	t.Run("Should fail writes on a read-only filesystem", func(t *testing.T) {
		slot := NewFileSlot(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/state")
		assert.Error(t, slot.Write(context.Background(), "cfg", []byte("{}")))
	})
}

func TestSQLiteSlot(t *testing.T) {
	t.Run("Should round-trip through a database file", func(t *testing.T) {
		slot, err := NewSQLiteSlot(context.Background(), filepath.Join(t.TempDir(), "wrfconf.db"))
		require.NoError(t, err)
		t.Cleanup(func() { slot.Close() })
		slotContract(t, slot)
	})

	t.Run("Should default to an in-memory database", func(t *testing.T) {
		slot, err := NewSQLiteSlot(context.Background(), "")
		require.NoError(t, err)
		t.Cleanup(func() { slot.Close() })
		slotContract(t, slot)
	})
}

func TestRedisSlot(t *testing.T) {
	t.Run("Should round-trip through redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		slot := NewRedisSlot(client, "")
		t.Cleanup(func() { slot.Close() })
		slotContract(t, slot)
		assert.True(t, mr.Exists("wrfconf:cfg"))
	})

	t.Run("Should dial by url", func(t *testing.T) {
		mr := miniredis.RunT(t)
		slot, err := DialRedisSlot(context.Background(), "redis://"+mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { slot.Close() })
		slotContract(t, slot)
	})

	t.Run("Should give up dialing an unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := DialRedisSlot(context.Background(), "redis://"+addr)
		assert.ErrorContains(t, err, "redis: ping")
	})

	t.Run("Should surface connection failures", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		slot := NewRedisSlot(client, "")
		t.Cleanup(func() { slot.Close() })
		mr.Close()
		err := slot.Write(context.Background(), "cfg", []byte("{}"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestOpen(t *testing.T) {
	t.Run("Should pick the configured driver", func(t *testing.T) {
		ctx := context.Background()
		slot, err := Open(ctx, Options{Driver: DriverFile, Path: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &FileSlot{}, slot)

		slot, err = Open(ctx, Options{Driver: DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		assert.IsType(t, &SQLiteSlot{}, slot)
		require.NoError(t, slot.Close())

		mr := miniredis.RunT(t)
		slot, err = Open(ctx, Options{Driver: DriverRedis, RedisURL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		assert.IsType(t, &RedisSlot{}, slot)
		require.NoError(t, slot.Close())

		_, err = Open(ctx, Options{Driver: "etcd"})
		assert.Error(t, err)
	})
}
