// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/models"
)

// SyncQueue is the durable FIFO of pending writes for one collection,
// surviving process restarts. Ordering is the sqlite rowid sequence: strict
// FIFO within the collection, no cross-collection guarantee.
type SyncQueue struct {
	db         *DB
	collection string
	mu         *sync.Mutex
	logger     *logger.Logger
}

var _ Queue = (*SyncQueue)(nil)

// NewSyncQueue is used by [Manager]; tests may construct queues directly
// over an open DB.
func NewSyncQueue(db *DB, collection string, mu *sync.Mutex, log *logger.Logger) *SyncQueue {
	return &SyncQueue{
		db:         db,
		collection: collection,
		mu:         mu,
		logger:     log,
	}
}

// Push implements [Queue]. Always appends: two saves and a delete of the
// same entity enqueue three independent actions.
func (q *SyncQueue) Push(ctx context.Context, action models.PendingWriteAction) error {
	log := logger.FromContext(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()

	action.Collection = q.collection
	if action.EnqueuedAt.IsZero() {
		action.EnqueuedAt = time.Now().UTC()
	}

	sqlStr, args, err := insertPendingActionSQL(action)
	if err != nil {
		return &CacheWriteError{Code: CodeQueuePushAction, Collection: q.collection, EntityID: action.EntityID, Err: err}
	}

	if _, err = q.db.ExecContext(ctx, sqlStr, args...); err != nil {
		log.Err(err).
			Str("func", "SyncQueue.Push").
			Str("collection", q.collection).
			Str("entity_id", action.EntityID).
			Str("action", string(action.Action)).
			Msg("failed to append pending write action")
		return &CacheWriteError{Code: CodeQueuePushAction, Collection: q.collection, EntityID: action.EntityID, Err: err}
	}

	return nil
}

// Pop implements [Queue]. The head row is read and deleted in one
// transaction; an empty queue returns (nil, nil), not an error.
func (q *SyncQueue) Pop(ctx context.Context) (*models.PendingWriteAction, error) {
	log := logger.FromContext(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &CacheWriteError{Code: CodeQueuePopAction, Collection: q.collection, Err: err}
	}
	defer tx.Rollback()

	action, err := q.scanOldest(ctx, tx)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, nil
	}

	delStr, delArgs, err := deletePendingActionSQL(action.Seq)
	if err != nil {
		return nil, &CacheWriteError{Code: CodeQueuePopAction, Collection: q.collection, EntityID: action.EntityID, Err: err}
	}
	if _, err = tx.ExecContext(ctx, delStr, delArgs...); err != nil {
		log.Err(err).
			Str("func", "SyncQueue.Pop").
			Str("collection", q.collection).
			Int64("seq", action.Seq).
			Msg("failed to delete popped action")
		return nil, &CacheWriteError{Code: CodeQueuePopAction, Collection: q.collection, EntityID: action.EntityID, Err: err}
	}

	if err = tx.Commit(); err != nil {
		return nil, &CacheWriteError{Code: CodeQueuePopAction, Collection: q.collection, EntityID: action.EntityID, Err: err}
	}

	return action, nil
}

// Peek implements [Queue].
func (q *SyncQueue) Peek(ctx context.Context) (*models.PendingWriteAction, error) {
	return q.scanOldest(ctx, q.db.DB)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (q *SyncQueue) scanOldest(ctx context.Context, db queryRower) (*models.PendingWriteAction, error) {
	selStr, selArgs, err := selectOldestPendingActionSQL(q.collection)
	if err != nil {
		return nil, &CacheWriteError{Code: CodeQueuePopAction, Collection: q.collection, Err: err}
	}

	var action models.PendingWriteAction
	var actionKind string
	var payload sql.NullString
	row := db.QueryRowContext(ctx, selStr, selArgs...)
	if err = row.Scan(&action.Seq, &action.Collection, &actionKind, &action.EntityID, &payload, &action.EnqueuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan pending action row: %w", err)
	}

	action.Action = models.PendingAction(actionKind)
	if payload.Valid && payload.String != "" {
		action.Payload = json.RawMessage(payload.String)
	}

	return &action, nil
}

// Count implements [Queue].
func (q *SyncQueue) Count(ctx context.Context) (int, error) {
	sqlStr, args, err := countPendingActionsSQL(q.collection)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err = q.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending actions: %w", err)
	}
	return n, nil
}

// ReplaceID implements [Queue]. Payloads carrying the old id are rewritten
// too, so a queued update replays under the permanent id.
func (q *SyncQueue) ReplaceID(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()

	wrap := func(err error) error {
		return &CacheWriteError{Code: CodeQueueReplaceID, Collection: q.collection, EntityID: oldID, Err: err}
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err)
	}
	defer tx.Rollback()

	pending, err := q.scanByEntity(ctx, tx, oldID)
	if err != nil {
		return wrap(err)
	}

	for _, item := range pending {
		payload := item.payload
		if payload != "" {
			rewritten, err := rewritePayloadID(json.RawMessage(payload), newID)
			if err != nil {
				return wrap(err)
			}
			payload = string(rewritten)
		}
		updStr, updArgs, err := updatePendingActionEntitySQL(item.seq, newID, payload)
		if err != nil {
			return wrap(err)
		}
		if _, err = tx.ExecContext(ctx, updStr, updArgs...); err != nil {
			log.Err(err).
				Str("func", "SyncQueue.ReplaceID").
				Str("collection", q.collection).
				Int64("seq", item.seq).
				Msg("failed to rewrite queued action id")
			return wrap(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return wrap(err)
	}
	return nil
}

type queuedPayload struct {
	seq     int64
	payload string
}

func (q *SyncQueue) scanByEntity(ctx context.Context, tx *sql.Tx, entityID string) ([]queuedPayload, error) {
	selStr, selArgs, err := selectPendingActionsByEntitySQL(q.collection, entityID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, selStr, selArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []queuedPayload
	for rows.Next() {
		var item queuedPayload
		var payload sql.NullString
		if err = rows.Scan(&item.seq, &payload); err != nil {
			return nil, err
		}
		item.payload = payload.String
		pending = append(pending, item)
	}
	return pending, rows.Err()
}

func rewritePayloadID(payload json.RawMessage, id string) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode queued payload: %w", err)
	}
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	doc["_id"] = idRaw
	return json.Marshal(doc)
}

// Purge implements [Queue]. Drops every pending action without applying it.
func (q *SyncQueue) Purge(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()

	sqlStr, args, err := purgePendingActionsSQL(q.collection)
	if err != nil {
		return 0, &CacheWriteError{Code: CodeQueuePurge, Collection: q.collection, Err: err}
	}

	res, err := q.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Err(err).
			Str("func", "SyncQueue.Purge").
			Str("collection", q.collection).
			Msg("failed to purge pending actions")
		return 0, &CacheWriteError{Code: CodeQueuePurge, Collection: q.collection, Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &CacheWriteError{Code: CodeQueuePurge, Collection: q.collection, Err: err}
	}

	log.Debug().
		Str("func", "SyncQueue.Purge").
		Str("collection", q.collection).
		Int64("purged", affected).
		Msg("purged pending actions")

	return int(affected), nil
}
