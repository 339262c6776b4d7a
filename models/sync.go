// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package models

// SyncError records one pending action that could not be applied to the
// backend during Push. The action itself is re-queued, never discarded.
type SyncError struct {
	Collection string        `json:"collection"`
	EntityID   string        `json:"entity_id"`
	Action     PendingAction `json:"action"`

	// Message is the human-readable failure description, taken verbatim
	// from the underlying network or backend error.
	Message string `json:"message"`
}

// SyncResult summarizes one Push/Pull/Sync run.
//
// PushCount always equals the number of actions popped from the queue,
// successful or not, so callers can audit the run against the queue length
// they observed beforehand.
type SyncResult struct {
	// PushCount is the total number of pending actions popped and applied
	// (or attempted) during the push phase.
	PushCount int `json:"push_count"`

	// PushedEntities lists the entity ids applied successfully, in apply
	// order. Ids rewritten by the backend appear with their final value.
	PushedEntities []string `json:"pushed_entities"`

	// PullCount is the number of entities fetched and merged during the
	// pull phase.
	PullCount int `json:"pull_count"`

	// Errors holds the per-action failures from the push phase.
	Errors []SyncError `json:"errors,omitempty"`
}
