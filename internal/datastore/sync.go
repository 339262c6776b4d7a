// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package datastore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/internal/utils"
	"github.com/driftstore/driftstore/models"
)

// SyncCount returns the number of pending write actions awaiting Push.
func (d *DataStore[T, PT]) SyncCount(ctx context.Context) (int, error) {
	if !d.storeType.usesQueue() {
		return 0, networkStoreError(d.collection, "sync count")
	}
	return d.queue.Count(ctx)
}

// Push applies queued write actions to the backend in FIFO order. A failed
// action is re-queued at the tail and reported in the result; whether the
// loop continues past it is the ContinueOnError setting. PushCount always
// equals the number of actions popped, successful or not.
//
// On cancellation mid-push, actions already applied stay applied and the
// rest stay queued; partial progress is reported, not rolled back.
func (d *DataStore[T, PT]) Push(ctx context.Context) (*models.SyncResult, error) {
	if !d.storeType.usesQueue() {
		return nil, networkStoreError(d.collection, "push")
	}

	log := logger.FromContext(ctx)
	result := &models.SyncResult{}

	pending, err := d.queue.Count(ctx)
	if err != nil {
		return result, err
	}

	// bounded by the initial count so re-queued failures are not popped
	// again within this push
	for i := 0; i < pending; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		action, err := d.queue.Pop(ctx)
		if err != nil {
			return result, err
		}
		if action == nil {
			break
		}
		result.PushCount++

		finalID, err := d.applyAction(ctx, *action)
		if err != nil {
			log.Err(err).
				Str("func", "DataStore.Push").
				Str("collection", d.collection).
				Str("entity_id", action.EntityID).
				Str("action", string(action.Action)).
				Msg("failed to apply pending action")

			result.Errors = append(result.Errors, models.SyncError{
				Collection: d.collection,
				EntityID:   action.EntityID,
				Action:     action.Action,
				Message:    err.Error(),
			})

			if requeueErr := d.queue.Push(ctx, *action); requeueErr != nil {
				return result, fmt.Errorf("re-queue failed action for %s: %w", action.EntityID, requeueErr)
			}
			if !d.cfg.ContinueOnError {
				break
			}
			continue
		}

		result.PushedEntities = append(result.PushedEntities, finalID)
	}

	return result, nil
}

// applyAction performs one pending action against the backend and settles
// the local cache. Returns the entity's final id, which differs from the
// queued one when the backend assigns a permanent id to a created entity.
func (d *DataStore[T, PT]) applyAction(ctx context.Context, action models.PendingWriteAction) (string, error) {
	switch action.Action {
	case models.ActionPost:
		payload := action.Payload
		if utils.IsTempID(action.EntityID) {
			stripped, err := stripEntityID(payload)
			if err != nil {
				return "", err
			}
			payload = stripped
		}

		doc, err := d.fetcher.Create(ctx, d.collection, payload)
		if err != nil {
			return "", err
		}
		newID, err := entityIDOf(doc)
		if err != nil {
			return "", err
		}
		if err = d.cache.ReplaceID(ctx, action.EntityID, newID, doc); err != nil {
			return "", err
		}
		// writes queued behind this create still carry the discarded id;
		// rewrite them so they replay under the permanent one
		if action.EntityID != newID {
			if err = d.queue.ReplaceID(ctx, action.EntityID, newID); err != nil {
				return "", err
			}
		}
		return newID, nil

	case models.ActionPut:
		doc, err := d.fetcher.Update(ctx, d.collection, action.EntityID, action.Payload)
		if err != nil {
			return "", err
		}
		if err = d.cacheDocs(ctx, []json.RawMessage{doc}); err != nil {
			return "", err
		}
		return action.EntityID, nil

	case models.ActionDelete:
		// a queued create that was itself deleted before any push never
		// reached the backend; nothing remote to remove
		if utils.IsTempID(action.EntityID) {
			return action.EntityID, nil
		}
		if _, err := d.fetcher.Delete(ctx, d.collection, action.EntityID); err != nil {
			return "", err
		}
		return action.EntityID, nil

	default:
		return "", fmt.Errorf("unknown pending action %q", action.Action)
	}
}

// Pull replaces the cached result set for q with the backend's current
// state. It requires a clean queue: pulling over unpushed local writes
// would lose them, so a non-empty queue is a [SyncPreconditionError], not a
// silent skip.
func (d *DataStore[T, PT]) Pull(ctx context.Context, q *query.Query) ([]T, error) {
	tr, err := d.translate(q)
	if err != nil {
		return nil, err
	}

	if _, err = d.pullClean(ctx, tr); err != nil {
		return nil, err
	}
	return d.findLocal(ctx, tr)
}

func (d *DataStore[T, PT]) pullClean(ctx context.Context, tr query.Translated) (int, error) {
	if !d.storeType.usesQueue() {
		return 0, networkStoreError(d.collection, "pull")
	}

	pending, err := d.queue.Count(ctx)
	if err != nil {
		return 0, err
	}
	if pending > 0 {
		return 0, &SyncPreconditionError{
			Collection: d.collection,
			Reason:     fmt.Sprintf("pull requires an empty sync queue, %d actions pending; push or purge first", pending),
		}
	}

	return d.pullInto(ctx, tr)
}

// Sync pushes pending writes, then pulls the backend state for q. The pull
// half runs only when the push left the queue clean; failed actions stay
// queued and surface in the result's Errors together with the precondition
// error.
func (d *DataStore[T, PT]) Sync(ctx context.Context, q *query.Query) (*models.SyncResult, error) {
	result, err := d.Push(ctx)
	if err != nil {
		return result, err
	}

	tr, err := d.translate(q)
	if err != nil {
		return result, err
	}

	pullCount, err := d.pullClean(ctx, tr)
	if err != nil {
		return result, err
	}
	result.PullCount = pullCount

	return result, nil
}

// Purge drops every pending write action without applying it. This is
// explicit, unrecoverable loss of local changes; callers are expected to
// confirm with the user first.
func (d *DataStore[T, PT]) Purge(ctx context.Context) (int, error) {
	if !d.storeType.usesQueue() {
		return 0, networkStoreError(d.collection, "purge")
	}
	return d.queue.Purge(ctx)
}

// stripEntityID removes the temporary _id so the backend assigns a
// permanent one.
func stripEntityID(payload json.RawMessage) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode queued payload: %w", err)
	}
	delete(doc, "_id")

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode queued payload: %w", err)
	}
	return out, nil
}
