package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the cache and queue. Callers should use
// [errors.Is] to match against these values; the concrete error types carry
// the machine-readable code and the affected keys.
var (
	// ErrCacheWrite is the kind of every local storage insert/update/delete
	// failure. Never swallowed: a failed save leaves the entity absent from
	// the cache and the error in the caller's hands.
	ErrCacheWrite = errors.New("cache write failed")

	// ErrCacheQuery is the kind of every malformed or unsupported filter
	// expression reaching the local cache.
	ErrCacheQuery = errors.New("cache query failed")

	// ErrEntityNotFound is returned by FindByID when the collection has no
	// record with the requested id.
	ErrEntityNotFound = errors.New("entity not found in cache")
)

// Machine-readable codes attached to cache errors, stable across releases
// so host applications can switch on them.
const (
	CodeCacheSaveEntity   = "ERROR_DATASTORE_CACHE_SAVE_INSERT_ENTITY"
	CodeCacheDeleteEntity = "ERROR_DATASTORE_CACHE_DELETE_ENTITY"
	CodeCacheReadEntity   = "ERROR_DATASTORE_CACHE_READ_ENTITY"
	CodeCacheReplaceID    = "ERROR_DATASTORE_CACHE_REPLACE_ID"
	CodeCacheQueryFilter  = "ERROR_DATASTORE_CACHE_QUERY_FILTER"
	CodeCacheMetadata     = "ERROR_DATASTORE_CACHE_QUERY_METADATA"
	CodeQueuePushAction   = "ERROR_DATASTORE_CACHE_PUSH_ACTION"
	CodeQueuePopAction    = "ERROR_DATASTORE_CACHE_POP_ACTION"
	CodeQueuePurge        = "ERROR_DATASTORE_CACHE_PURGE"
	CodeQueueReplaceID    = "ERROR_DATASTORE_CACHE_REPLACE_QUEUED_ID"
)

// CacheWriteError reports a failed local write with its stable code and the
// affected keys. Matches [ErrCacheWrite] under errors.Is.
type CacheWriteError struct {
	Code       string
	Collection string
	EntityID   string
	Err        error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("%s: collection %q entity %q: %v", e.Code, e.Collection, e.EntityID, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }

func (e *CacheWriteError) Is(target error) bool { return target == ErrCacheWrite }

// CacheQueryError reports a filter the local cache cannot evaluate. Matches
// [ErrCacheQuery] under errors.Is.
type CacheQueryError struct {
	Code   string
	Filter string
	Err    error
}

func (e *CacheQueryError) Error() string {
	return fmt.Sprintf("%s: filter %q: %v", e.Code, e.Filter, e.Err)
}

func (e *CacheQueryError) Unwrap() error { return e.Err }

func (e *CacheQueryError) Is(target error) bool { return target == ErrCacheQuery }
