package datastore

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncPrecondition marks Sync/Push/Pull/Purge calls that are invalid
	// for the store's state or policy: a NETWORK-type store has no queue,
	// and Pull requires a clean queue.
	ErrSyncPrecondition = errors.New("sync precondition failed")

	// ErrInvalidStoreType marks construction with an unknown [StoreType].
	ErrInvalidStoreType = errors.New("invalid store type")
)

// SyncPreconditionError reports why a sync-family operation was rejected
// before any network or queue activity happened.
type SyncPreconditionError struct {
	Collection string
	Reason     string
}

func (e *SyncPreconditionError) Error() string {
	return fmt.Sprintf("collection %s: %s", e.Collection, e.Reason)
}

func (e *SyncPreconditionError) Is(target error) bool { return target == ErrSyncPrecondition }

func networkStoreError(collection, op string) error {
	return &SyncPreconditionError{
		Collection: collection,
		Reason:     fmt.Sprintf("%s is not available on a NETWORK-type store", op),
	}
}
