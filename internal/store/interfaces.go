package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Cache is one collection's durable entity store. Implemented by
// [LocalCache]; mocked in datastore tests.
type Cache interface {
	// Save upserts records by entity id, last write wins. Bulk saves fail
	// loud on the first failing record; records saved before it stay saved.
	Save(ctx context.Context, records ...models.CacheRecord) error

	// FindByID returns the record or [ErrEntityNotFound].
	FindByID(ctx context.Context, id string) (models.CacheRecord, error)

	// FindAll returns every record in the collection, unspecified order.
	FindAll(ctx context.Context) ([]models.CacheRecord, error)

	// FindByQuery evaluates a translated query against the local store with
	// the same filter semantics as the network query.
	FindByQuery(ctx context.Context, q query.Translated) ([]models.CacheRecord, error)

	// Delete removes the record; false (and no error) when the id is absent.
	Delete(ctx context.Context, id string) (bool, error)

	// ReplaceID rewrites a record under a new id, replacing its payload.
	// Used when the backend confirms a queued create and assigns the
	// permanent id.
	ReplaceID(ctx context.Context, oldID, newID string, payload json.RawMessage) error

	// Clear drops every record in the collection.
	Clear(ctx context.Context) error

	// Count returns the number of cached records.
	Count(ctx context.Context) (int, error)

	// QueryMetadata returns the stored [models.QueryCacheItem] for the query
	// string, or nil when no successful fetch has been recorded.
	QueryMetadata(ctx context.Context, queryString string) (*models.QueryCacheItem, error)

	// SetQueryMetadata records the time of a successful remote fetch.
	SetQueryMetadata(ctx context.Context, queryString string, lastRequestTime time.Time) error
}

// Queue is one collection's durable FIFO of pending writes. Implemented by
// [SyncQueue]; mocked in datastore tests.
type Queue interface {
	// Push appends the action to the tail. Entries are never merged or
	// deduplicated.
	Push(ctx context.Context, action models.PendingWriteAction) error

	// Pop removes and returns the oldest action, or nil when the queue is
	// empty. Destructive: the caller re-queues if the network apply fails.
	Pop(ctx context.Context) (*models.PendingWriteAction, error)

	// Peek returns the oldest action without removing it, or nil.
	Peek(ctx context.Context) (*models.PendingWriteAction, error)

	// Count returns the number of pending actions.
	Count(ctx context.Context) (int, error)

	// Purge drops all pending actions without applying them and returns how
	// many were dropped. Explicit data loss; callers confirm before use.
	Purge(ctx context.Context) (int, error)

	// ReplaceID rewrites queued actions targeting oldID to newID, payloads
	// included. Called when the backend assigns a permanent id to a pushed
	// create, so writes queued behind it against the temporary id still
	// reach the entity.
	ReplaceID(ctx context.Context, oldID, newID string) error
}
