package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routine-hub/backend/config"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingBackend) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (failingBackend) Close() error                              { return nil }

func TestStore_LoadAbsent(t *testing.T) {
	s := NewStore(NewMemoryBackend(), "diu_", zap.NewNop())

	_, ok := s.Load(context.Background(), KeyRoutine)
	assert.False(t, ok)
}

func TestStore_PrefixAndLastWriteWins(t *testing.T) {
	backend := NewMemoryBackend()
	s := NewStore(backend, "diu_", zap.NewNop())
	ctx := context.Background()

	s.Save(ctx, KeyLastSeenVersion, "1.0")
	s.Save(ctx, KeyLastSeenVersion, "1.1")

	got, ok := s.Load(ctx, KeyLastSeenVersion)
	require.True(t, ok)
	assert.Equal(t, "1.1", got)

	raw, ok, _ := backend.Get(ctx, "diu_lastSeenVersion")
	require.True(t, ok, "后端应使用带前缀的键")
	assert.Equal(t, "1.1", raw)
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	s := NewStore(failingBackend{}, "", zap.NewNop())
	ctx := context.Background()

	assert.NotPanics(t, func() { s.Save(ctx, KeyRoutine, "[]") })
	_, ok := s.Load(ctx, KeyRoutine)
	assert.False(t, ok)
}

func TestStore_JSONRoundTripAndCorruption(t *testing.T) {
	s := NewStore(NewMemoryBackend(), "", zap.NewNop())
	ctx := context.Background()

	s.SaveJSON(ctx, KeyMetadata, map[string]string{"version": "2.0"})
	var got map[string]string
	require.True(t, s.LoadJSON(ctx, KeyMetadata, &got))
	assert.Equal(t, "2.0", got["version"])

	s.Save(ctx, KeyRoutine, "{not json")
	var broken []any
	assert.False(t, s.LoadJSON(ctx, KeyRoutine, &broken), "损坏内容按缺失处理")
}

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.sqlite")
	ctx := context.Background()

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "routine", `[{"id":"1"}]`))
	require.NoError(t, b.Set(ctx, "routine", `[{"id":"2"}]`))
	require.NoError(t, b.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "routine")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"2"}]`, got)

	_, ok, err = reopened.Get(ctx, "metadata")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(&config.CacheConfig{Driver: "memory"}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	s, err = Open(&config.CacheConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "c.sqlite")}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = Open(&config.CacheConfig{Driver: "redis"}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrRedisUnavailable)

	_, err = Open(&config.CacheConfig{Driver: "etcd"}, nil, zap.NewNop())
	assert.Error(t, err)
}
