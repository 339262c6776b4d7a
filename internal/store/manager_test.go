package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := config.Storage{DB: config.DB{DSN: filepath.Join(t.TempDir(), "cache.db")}}
	m, err := NewManager(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewManager_CreatesDBFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	m, err := NewManager(context.Background(), config.Storage{DB: config.DB{DSN: dsn}}, logger.Nop())
	require.NoError(t, err)
	defer m.Close()

	cache := m.GetCache("books")
	require.NotNil(t, cache)
}

func TestManager_GetCacheReturnsSameInstance(t *testing.T) {
	m := newTestManager(t)

	first := m.GetCache("books")
	second := m.GetCache("books")
	assert.Same(t, first.(*LocalCache), second.(*LocalCache))

	other := m.GetCache("users")
	assert.NotSame(t, first.(*LocalCache), other.(*LocalCache))
}

func TestManager_CacheAndQueueSharePairMutex(t *testing.T) {
	m := newTestManager(t)

	cache := m.GetCache("books").(*LocalCache)
	queue := m.GetSyncQueue("books").(*SyncQueue)
	assert.Same(t, cache.mu, queue.mu)

	otherQueue := m.GetSyncQueue("users").(*SyncQueue)
	assert.NotSame(t, cache.mu, otherQueue.mu)
}

func TestManager_StoresShareDatabase(t *testing.T) {
	m := newTestManager(t)
	ctx := testContext()

	cache := m.GetCache("books")
	queue := m.GetSyncQueue("books")

	require.NoError(t, cache.Save(ctx, record("b1", `{"_id":"b1","title":"Dune"}`)))
	require.NoError(t, queue.Push(ctx, models.PendingWriteAction{
		Action:   models.ActionPost,
		EntityID: "b1",
		Payload:  []byte(`{"_id":"b1","title":"Dune"}`),
	}))

	got, err := cache.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.EntityID)

	n, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	cfg := config.Storage{DB: config.DB{DSN: filepath.Join(t.TempDir(), "cache.db")}}
	m, err := NewManager(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}
