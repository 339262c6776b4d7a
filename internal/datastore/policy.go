// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package datastore

// StoreType selects the cache policy of a [DataStore]: where reads come
// from, where writes go, and whether a sync queue exists at all.
type StoreType string

const (
	// StoreTypeNetwork is remote-only: no local cache, no sync queue.
	// Operations fail outright when the backend is unreachable.
	StoreTypeNetwork StoreType = "NETWORK"

	// StoreTypeSync makes the local cache the source of truth. Writes queue
	// locally and reach the backend only on an explicit Push or Sync.
	StoreTypeSync StoreType = "SYNC"

	// StoreTypeCache reads cache-first with a network refresh when the
	// queue is clean; writes behave as in StoreTypeSync.
	StoreTypeCache StoreType = "CACHE"

	// StoreTypeAuto goes to the network first and falls back to the
	// StoreTypeSync behavior on connectivity failure.
	StoreTypeAuto StoreType = "AUTO"
)

func (t StoreType) valid() bool {
	switch t {
	case StoreTypeNetwork, StoreTypeSync, StoreTypeCache, StoreTypeAuto:
		return true
	default:
		return false
	}
}

// usesQueue reports whether the policy maintains a local cache and sync
// queue.
func (t StoreType) usesQueue() bool {
	return t != StoreTypeNetwork
}
