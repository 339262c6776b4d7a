// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package models

import (
	"encoding/json"
	"time"
)

// PendingAction is the kind of a queued write.
type PendingAction string

const (
	ActionPost   PendingAction = "POST"
	ActionPut    PendingAction = "PUT"
	ActionDelete PendingAction = "DELETE"
)

// PendingWriteAction is one entry in a collection's sync queue: a local
// write that has not yet been applied to the backend.
//
// Entries are never deduplicated or merged: saving the same entity twice and
// then deleting it enqueues three independent actions, replayed in order.
// The queue preserves the full local write history for the backend to
// resolve.
type PendingWriteAction struct {
	// Seq is the queue-assigned monotonic sequence number. Zero until the
	// action has been pushed.
	Seq int64 `json:"seq"`

	Collection string        `json:"collection"`
	Action     PendingAction `json:"action"`
	EntityID   string        `json:"entity_id"`

	// Payload is the serialized entity for POST/PUT actions; nil for DELETE.
	Payload json.RawMessage `json:"payload,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}
