// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package models defines the wire and storage data types shared by every
// layer of the SDK: the entity envelope, cache records, pending write
// actions, delta-set payloads, and sync summaries.
package models

import "time"

// Entity is implemented by every persistable record. Domain types obtain the
// implementation by embedding [DocumentBase]; the SDK never requires
// inheritance beyond that single embedded struct.
type Entity interface {
	// EntityID returns the record's identifier. Empty for records that have
	// never been saved.
	EntityID() string

	// SetEntityID overwrites the record's identifier. Called by the SDK when
	// the backend assigns a permanent id, or when a temporary id is issued
	// for an offline create.
	SetEntityID(id string)
}

// ACL is the access-control descriptor attached to every entity under the
// `_acl` wire name.
type ACL struct {
	// Creator is the id of the user that created the entity.
	Creator string `json:"creator,omitempty"`

	// GloballyReadable marks the entity readable by any authenticated user.
	GloballyReadable *bool `json:"gr,omitempty"`

	// Readers and Writers list user ids granted explicit access.
	Readers []string `json:"r,omitempty"`
	Writers []string `json:"w,omitempty"`
}

// Metadata carries the backend-maintained timestamps under the `_kmd` wire
// name. Both values are assigned by the backend; the SDK treats them as
// read-only.
type Metadata struct {
	CreatedAt    time.Time `json:"ect,omitempty"`
	LastModified time.Time `json:"lmt,omitempty"`
}

// DocumentBase holds the required fields of every entity. Embed it by value
// in domain records:
//
//	type Book struct {
//	    models.DocumentBase
//	    Title string `json:"title"`
//	}
type DocumentBase struct {
	ID  string    `json:"_id,omitempty"`
	ACL *ACL      `json:"_acl,omitempty"`
	KMD *Metadata `json:"_kmd,omitempty"`
}

// EntityID implements [Entity].
func (b *DocumentBase) EntityID() string { return b.ID }

// SetEntityID implements [Entity].
func (b *DocumentBase) SetEntityID(id string) { b.ID = id }
