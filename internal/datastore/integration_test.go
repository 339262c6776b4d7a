package datastore

// End-to-end tests over the real stack: SQLite-backed cache and queue, the
// resty HTTP fetcher, and the in-memory fake backend, joined only at the
// HTTP boundary.

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftstore/driftstore/internal/adapter"
	"github.com/driftstore/driftstore/internal/baastest"
	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/store"
	"github.com/driftstore/driftstore/internal/utils"
)

type liveStack struct {
	backend *baastest.Server
	server  *httptest.Server
	fetcher adapter.Fetcher
	manager *store.Manager
}

func newLiveStack(t *testing.T) *liveStack {
	t.Helper()

	backend := baastest.NewServer("app_1", "secret")
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	manager, err := store.NewManager(context.Background(), config.Storage{
		DB: config.DB{DSN: filepath.Join(t.TempDir(), "cache.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return &liveStack{
		backend: backend,
		server:  server,
		fetcher: adapter.NewHTTPFetcher(config.App{
			BaseURL:   server.URL,
			AppKey:    "app_1",
			AppSecret: "secret",
		}),
		manager: manager,
	}
}

func (s *liveStack) store(t *testing.T, st StoreType, cfg config.Sync) *DataStore[Book, *Book] {
	t.Helper()

	ds, err := New[Book]("books", st, bookWireNames, Deps{
		Cache:   s.manager.GetCache("books"),
		Queue:   s.manager.GetSyncQueue("books"),
		Fetcher: s.fetcher,
	}, cfg)
	require.NoError(t, err)
	return ds
}

func TestLive_SavePushReplacesTempID(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	saved, err := books.Save(ctx, &Book{Title: "Dune", Year: 1965})
	require.NoError(t, err)
	require.True(t, utils.IsTempID(saved.EntityID()))

	// Nothing on the backend until Push.
	assert.Equal(t, 0, stack.backend.Count("books"))

	result, err := books.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Empty(t, result.Errors)

	require.Equal(t, 1, stack.backend.Count("books"))
	doc, ok := stack.backend.Doc("books", "srv_1")
	require.True(t, ok)
	assert.Equal(t, "Dune", doc["title"])

	// The cache now carries the permanent id; the temporary one is gone.
	got, err := books.FindByID(ctx, "srv_1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	_, err = books.FindByID(ctx, saved.EntityID())
	assert.ErrorIs(t, err, store.ErrEntityNotFound)
}

func TestLive_SaveTwiceThenPushAppliesBothWrites(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	saved, err := books.Save(ctx, &Book{Title: "Dune", Year: 1965})
	require.NoError(t, err)
	require.True(t, utils.IsTempID(saved.EntityID()))

	saved.Title = "Dune Messiah"
	_, err = books.Save(ctx, &saved)
	require.NoError(t, err)

	result, err := books.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PushCount)
	assert.Empty(t, result.Errors)

	// The create lands first, then the queued update replays under the
	// backend-assigned id.
	require.Equal(t, 1, stack.backend.Count("books"))
	doc, ok := stack.backend.Doc("books", "srv_1")
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", doc["title"])

	pending, err := books.SyncCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestLive_PullMergesBackendState(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	stack.backend.Seed("books",
		map[string]any{"_id": "b1", "title": "Dune", "year": 1965},
		map[string]any{"_id": "b2", "title": "Hyperion", "year": 1989},
	)

	pulled, err := books.Pull(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, pulled, 2)

	// A SYNC store serves subsequent reads from the local cache.
	stack.server.Close()
	got, err := books.FindByID(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Hyperion", got.Title)

	count, err := books.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLive_SyncRoundTrip(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	stack.backend.Seed("books", map[string]any{"_id": "b1", "title": "Dune"})

	_, err := books.Save(ctx, &Book{Title: "Hyperion", Year: 1989})
	require.NoError(t, err)

	result, err := books.Sync(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Equal(t, 2, result.PullCount)

	assert.Equal(t, 2, stack.backend.Count("books"))

	local, err := books.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, local, 2)
}

func TestLive_DeltaPull(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{DeltaSet: true})
	ctx := context.Background()

	stack.backend.Seed("books",
		map[string]any{"_id": "b1", "title": "Dune"},
		map[string]any{"_id": "b2", "title": "Hyperion"},
	)

	// First pull has no recorded fetch time, so it runs as a full fetch.
	pulled, err := books.Pull(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, pulled, 2)

	// Change one entity and delete the other behind the client's back.
	stack.backend.Seed("books", map[string]any{"_id": "b2", "title": "Fall of Hyperion"})
	_, err = stack.fetcher.Delete(ctx, "books", "b1")
	require.NoError(t, err)

	pulled, err = books.Pull(ctx, nil)
	require.NoError(t, err)

	require.Len(t, pulled, 1)
	assert.Equal(t, "Fall of Hyperion", pulled[0].Title)

	_, err = books.FindByID(ctx, "b1")
	assert.ErrorIs(t, err, store.ErrEntityNotFound)
}

func TestLive_AutoFindFallsBackToCacheOffline(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeAuto, config.Sync{})
	ctx := context.Background()

	stack.backend.Seed("books", map[string]any{"_id": "b1", "title": "Dune"})

	online, err := books.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, online, 1)

	stack.server.Close()

	offline, err := books.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, offline, 1)
	assert.Equal(t, "Dune", offline[0].Title)
}

func TestLive_PushFailureKeepsActionQueued(t *testing.T) {
	stack := newLiveStack(t)
	books := stack.store(t, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	_, err := books.Save(ctx, &Book{Title: "Dune"})
	require.NoError(t, err)

	stack.server.Close()

	result, err := books.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	require.Len(t, result.Errors, 1)

	count, err := books.SyncCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
