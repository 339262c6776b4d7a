// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftstore/driftstore/internal/adapter"
	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

func pending(seq int64, action models.PendingAction, id, payload string) *models.PendingWriteAction {
	a := &models.PendingWriteAction{
		Seq:        seq,
		Collection: "books",
		Action:     action,
		EntityID:   id,
		EnqueuedAt: time.Now().UTC(),
	}
	if payload != "" {
		a.Payload = json.RawMessage(payload)
	}
	return a
}

// ── precondition enforcement ────────────────────────────────────────────────

func TestSyncFamily_RejectedOnNetworkStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no fetcher, cache, or queue expectations: the rejection happens
	// before any collaborator is touched
	ds, _ := newTestStore(t, ctrl, StoreTypeNetwork, config.Sync{})
	ctx := context.Background()

	_, err := ds.Push(ctx)
	assert.ErrorIs(t, err, ErrSyncPrecondition)

	_, err = ds.Pull(ctx, nil)
	assert.ErrorIs(t, err, ErrSyncPrecondition)

	_, err = ds.Sync(ctx, nil)
	assert.ErrorIs(t, err, ErrSyncPrecondition)

	_, err = ds.Purge(ctx)
	assert.ErrorIs(t, err, ErrSyncPrecondition)

	_, err = ds.SyncCount(ctx)
	assert.ErrorIs(t, err, ErrSyncPrecondition)
}

func TestPull_RequiresCleanQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(3, nil)

	_, err := ds.Pull(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncPrecondition)

	var precondErr *SyncPreconditionError
	require.ErrorAs(t, err, &precondErr)
	assert.Equal(t, "books", precondErr.Collection)
}

// ── Push ────────────────────────────────────────────────────────────────────

func TestPush_EmptyQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(0, nil)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.PushCount)
	assert.Empty(t, result.PushedEntities)
	assert.Empty(t, result.Errors)
}

func TestPush_AppliesActionsInFIFOOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(3, nil)
	gomock.InOrder(
		m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionPut, "a", `{"_id":"a","title":"A"}`), nil),
		m.queue.EXPECT().Pop(ctx).Return(pending(2, models.ActionPut, "b", `{"_id":"b","title":"B"}`), nil),
		m.queue.EXPECT().Pop(ctx).Return(pending(3, models.ActionPut, "c", `{"_id":"c","title":"C"}`), nil),
	)

	var applied []string
	m.fetcher.EXPECT().
		Update(ctx, "books", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, id string, payload json.RawMessage) (json.RawMessage, error) {
			applied = append(applied, id)
			return payload, nil
		}).
		Times(3)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil).Times(3)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, applied)
	assert.Equal(t, 3, result.PushCount)
	assert.Equal(t, []string{"a", "b", "c"}, result.PushedEntities)
	assert.Empty(t, result.Errors)
}

func TestPush_CreateReplacesTempID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	tempID := "tmp_0190cafe-0000-7000-8000-000000000001"
	queued := `{"_id":"` + tempID + `","title":"Dune"}`
	stored := rawDoc(`{"_id":"srv_1","title":"Dune","_kmd":{"ect":"2026-02-01T00:00:00.000Z","lmt":"2026-02-01T00:00:00.000Z"}}`)

	m.queue.EXPECT().Count(ctx).Return(1, nil)
	m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionPost, tempID, queued), nil)
	m.fetcher.EXPECT().
		Create(ctx, "books", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload json.RawMessage) (json.RawMessage, error) {
			// the temporary id never reaches the backend
			var doc map[string]any
			require.NoError(t, json.Unmarshal(payload, &doc))
			assert.NotContains(t, doc, "_id")
			return stored, nil
		})
	m.cache.EXPECT().ReplaceID(ctx, tempID, "srv_1", stored).Return(nil)
	m.queue.EXPECT().ReplaceID(ctx, tempID, "srv_1").Return(nil)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Equal(t, []string{"srv_1"}, result.PushedEntities)
}

// A save-then-save of a new entity queues a create followed by an update
// against the temporary id. Once the create lands and the backend assigns
// the permanent id, the queued update must follow it.
func TestPush_QueuedUpdateFollowsAssignedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	tempID := "tmp_0190cafe-0000-7000-8000-000000000002"
	created := rawDoc(`{"_id":"srv_9","title":"Dune"}`)
	updated := rawDoc(`{"_id":"srv_9","title":"Dune Messiah"}`)

	m.queue.EXPECT().Count(ctx).Return(2, nil)
	gomock.InOrder(
		m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionPost, tempID, `{"_id":"`+tempID+`","title":"Dune"}`), nil),
		// the queued update is handed back already rewritten to srv_9
		m.queue.EXPECT().Pop(ctx).Return(pending(2, models.ActionPut, "srv_9", `{"_id":"srv_9","title":"Dune Messiah"}`), nil),
	)
	m.fetcher.EXPECT().Create(ctx, "books", gomock.Any()).Return(created, nil)
	m.cache.EXPECT().ReplaceID(ctx, tempID, "srv_9", created).Return(nil)
	m.queue.EXPECT().ReplaceID(ctx, tempID, "srv_9").Return(nil)
	m.fetcher.EXPECT().Update(ctx, "books", "srv_9", gomock.Any()).Return(updated, nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PushCount)
	assert.Equal(t, []string{"srv_9", "srv_9"}, result.PushedEntities)
	assert.Empty(t, result.Errors)
}

func TestPush_DeleteOfTempIDSkipsNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	tempID := "tmp_0190cafe-0000-7000-8000-000000000002"

	m.queue.EXPECT().Count(ctx).Return(1, nil)
	m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionDelete, tempID, ""), nil)
	// no fetcher call: the create this delete shadows was never pushed

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Equal(t, []string{tempID}, result.PushedEntities)
}

func TestPush_FailedActionIsRequeuedAndReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	action := pending(1, models.ActionPut, "b1", `{"_id":"b1","title":"Dune"}`)

	m.queue.EXPECT().Count(ctx).Return(2, nil)
	m.queue.EXPECT().Pop(ctx).Return(action, nil)
	m.fetcher.EXPECT().
		Update(ctx, "books", "b1", gomock.Any()).
		Return(nil, &adapter.NetworkError{Op: "update", Err: errors.New("timeout")})
	m.queue.EXPECT().Push(ctx, *action).Return(nil)
	// ContinueOnError is false: the second queued action is not popped

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Empty(t, result.PushedEntities)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "b1", result.Errors[0].EntityID)
	assert.Equal(t, models.ActionPut, result.Errors[0].Action)
}

func TestPush_ContinueOnErrorKeepsGoing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{ContinueOnError: true})
	ctx := context.Background()

	failing := pending(1, models.ActionPut, "b1", `{"_id":"b1"}`)
	succeeding := pending(2, models.ActionPut, "b2", `{"_id":"b2"}`)

	m.queue.EXPECT().Count(ctx).Return(2, nil)
	gomock.InOrder(
		m.queue.EXPECT().Pop(ctx).Return(failing, nil),
		m.queue.EXPECT().Pop(ctx).Return(succeeding, nil),
	)
	m.fetcher.EXPECT().
		Update(ctx, "books", "b1", gomock.Any()).
		Return(nil, &adapter.NetworkError{Op: "update", Err: errors.New("timeout")})
	m.queue.EXPECT().Push(ctx, *failing).Return(nil)
	m.fetcher.EXPECT().
		Update(ctx, "books", "b2", gomock.Any()).
		Return(rawDoc(`{"_id":"b2"}`), nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PushCount)
	assert.Equal(t, []string{"b2"}, result.PushedEntities)
	require.Len(t, result.Errors, 1)
}

func TestPush_PushCountMatchesActionsPopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{ContinueOnError: true})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(2, nil)
	gomock.InOrder(
		m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionDelete, "b1", ""), nil),
		m.queue.EXPECT().Pop(ctx).Return(pending(2, models.ActionDelete, "b2", ""), nil),
	)
	m.fetcher.EXPECT().Delete(ctx, "books", "b1").Return(1, nil)
	m.fetcher.EXPECT().
		Delete(ctx, "books", "b2").
		Return(0, &adapter.BackendError{StatusCode: 500, Message: "oops"})
	m.queue.EXPECT().Push(ctx, gomock.Any()).Return(nil)

	result, err := ds.Push(ctx)
	require.NoError(t, err)
	// total popped, successes and failures alike
	assert.Equal(t, 2, result.PushCount)
	assert.Len(t, result.PushedEntities, 1)
	assert.Len(t, result.Errors, 1)
}

// ── Pull ────────────────────────────────────────────────────────────────────

func TestPull_FullFetchCachesAndRecordsMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	q := query.New().Where(query.Eq("Title", "Dune"))

	m.queue.EXPECT().Count(ctx).Return(0, nil)
	m.fetcher.EXPECT().
		Find(ctx, "books", gomock.Any()).
		Return([]json.RawMessage{rawDoc(`{"_id":"b1","title":"Dune"}`)}, nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)
	m.cache.EXPECT().SetQueryMetadata(ctx, `{"title":"Dune"}`, gomock.Any()).Return(nil)
	m.cache.EXPECT().
		FindByQuery(ctx, gomock.Any()).
		Return([]models.CacheRecord{{EntityID: "b1", Payload: rawDoc(`{"_id":"b1","title":"Dune"}`)}}, nil)

	books, err := ds.Pull(ctx, q)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestPull_DeltaMerge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{DeltaSet: true})
	ctx := context.Background()

	lastFetch := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	m.queue.EXPECT().Count(ctx).Return(0, nil)
	m.cache.EXPECT().
		QueryMetadata(ctx, "{}").
		Return(&models.QueryCacheItem{Collection: "books", QueryString: "{}", LastRequestTime: lastFetch}, nil)
	m.fetcher.EXPECT().
		FindDelta(ctx, "books", gomock.Any(), lastFetch).
		Return(models.DeltaSetResponse{
			Changed: []json.RawMessage{rawDoc(`{"_id":"b1","title":"Dune (revised)"}`)},
			Deleted: []models.EntityIDRef{{ID: "b9"}},
		}, nil)
	m.cache.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, records ...models.CacheRecord) error {
			require.Len(t, records, 1)
			assert.Equal(t, "b1", records[0].EntityID)
			return nil
		})
	// deleting an id the cache never held is a no-op, not an error
	m.cache.EXPECT().Delete(ctx, "b9").Return(false, nil)
	m.cache.EXPECT().SetQueryMetadata(ctx, "{}", gomock.Any()).Return(nil)
	m.cache.EXPECT().
		FindByQuery(ctx, gomock.Any()).
		Return([]models.CacheRecord{{EntityID: "b1", Payload: rawDoc(`{"_id":"b1","title":"Dune (revised)"}`)}}, nil)

	books, err := ds.Pull(ctx, nil)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune (revised)", books[0].Title)
}

func TestPull_DeltaFirstFetchFallsBackToFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{DeltaSet: true})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(0, nil)
	m.cache.EXPECT().QueryMetadata(ctx, "{}").Return(nil, nil)
	m.fetcher.EXPECT().
		Find(ctx, "books", gomock.Any()).
		Return([]json.RawMessage{rawDoc(`{"_id":"b1","title":"Dune"}`)}, nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)
	m.cache.EXPECT().SetQueryMetadata(ctx, "{}", gomock.Any()).Return(nil)
	m.cache.EXPECT().
		FindByQuery(ctx, gomock.Any()).
		Return([]models.CacheRecord{{EntityID: "b1", Payload: rawDoc(`{"_id":"b1","title":"Dune"}`)}}, nil)

	_, err := ds.Pull(ctx, nil)
	require.NoError(t, err)
}

func TestPull_MetadataNotRecordedOnFetchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(0, nil)
	m.fetcher.EXPECT().
		Find(ctx, "books", gomock.Any()).
		Return(nil, &adapter.NetworkError{Op: "find", Err: errors.New("timeout")})
	// no Save, no SetQueryMetadata

	_, err := ds.Pull(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNetwork)
}

// ── Sync ────────────────────────────────────────────────────────────────────

func TestSync_PushThenPull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	// push phase: one queued PUT
	m.queue.EXPECT().Count(ctx).Return(1, nil)
	m.queue.EXPECT().Pop(ctx).Return(pending(1, models.ActionPut, "b1", `{"_id":"b1","title":"Dune"}`), nil)
	m.fetcher.EXPECT().
		Update(ctx, "books", "b1", gomock.Any()).
		Return(rawDoc(`{"_id":"b1","title":"Dune"}`), nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	// pull phase: clean queue, full fetch
	m.queue.EXPECT().Count(ctx).Return(0, nil)
	m.fetcher.EXPECT().
		Find(ctx, "books", gomock.Any()).
		Return([]json.RawMessage{
			rawDoc(`{"_id":"b1","title":"Dune"}`),
			rawDoc(`{"_id":"b2","title":"Nova"}`),
		}, nil)
	m.cache.EXPECT().Save(ctx, gomock.Any()).Return(nil)
	m.cache.EXPECT().SetQueryMetadata(ctx, "{}", gomock.Any()).Return(nil)

	result, err := ds.Sync(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushCount)
	assert.Equal(t, 2, result.PullCount)
	assert.Empty(t, result.Errors)
}

func TestSync_AbortsPullWhenPushLeavesQueueDirty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	action := pending(1, models.ActionPut, "b1", `{"_id":"b1"}`)

	m.queue.EXPECT().Count(ctx).Return(1, nil)
	m.queue.EXPECT().Pop(ctx).Return(action, nil)
	m.fetcher.EXPECT().
		Update(ctx, "books", "b1", gomock.Any()).
		Return(nil, &adapter.NetworkError{Op: "update", Err: errors.New("timeout")})
	m.queue.EXPECT().Push(ctx, *action).Return(nil)

	// pull precondition check sees the re-queued action
	m.queue.EXPECT().Count(ctx).Return(1, nil)

	result, err := ds.Sync(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncPrecondition)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.PushCount)
	require.Len(t, result.Errors, 1)
}

// ── Purge / SyncCount ───────────────────────────────────────────────────────

func TestPurge_DropsQueuedActions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Purge(ctx).Return(4, nil)

	purged, err := ds.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, purged)
}

func TestSyncCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ds, m := newTestStore(t, ctrl, StoreTypeSync, config.Sync{})
	ctx := context.Background()

	m.queue.EXPECT().Count(ctx).Return(2, nil)

	n, err := ds.SyncCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
