// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package adapter provides the transport layer for talking to the backend
// data store.
//
// The primary abstraction is [Fetcher], which decouples the datastore layer
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPFetcher]) built on resty.
//
// Transport failures surface as [NetworkError] (matchable with [errors.Is]
// against [ErrNetwork]); non-2xx responses surface as [BackendError]
// carrying the status code and the server's message verbatim. Callers never
// see a raw resty or net/http error.
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/fetcher_mock.go -package=mock

// Fetcher executes translated queries and single-entity operations against
// the remote collection endpoints. Implementations manage authentication
// headers and map transport errors to this package's error types.
type Fetcher interface {
	// SetToken stores the session token attached to subsequent requests.
	// With no token set, requests fall back to app-level basic auth.
	SetToken(token string)

	// Token returns the currently stored session token, or "".
	Token() string

	// Find executes the translated query against the collection and returns
	// the raw entity documents in backend order.
	Find(ctx context.Context, collection string, q query.Translated) ([]json.RawMessage, error)

	// FindByID fetches one entity. A backend 404 maps to a [BackendError]
	// matching [ErrNotFound].
	FindByID(ctx context.Context, collection, id string) (json.RawMessage, error)

	// FindDelta asks the backend for entities changed or deleted since the
	// given instant, scoped to the translated query.
	FindDelta(ctx context.Context, collection string, q query.Translated, since time.Time) (models.DeltaSetResponse, error)

	// Create posts a new entity and returns the stored document, including
	// the backend-assigned id and metadata.
	Create(ctx context.Context, collection string, payload json.RawMessage) (json.RawMessage, error)

	// Update replaces the entity with the given id and returns the stored
	// document.
	Update(ctx context.Context, collection, id string, payload json.RawMessage) (json.RawMessage, error)

	// Delete removes the entity and returns the backend's deletion count.
	Delete(ctx context.Context, collection, id string) (int, error)

	// Count returns the number of entities matching the translated query
	// without transferring the documents themselves.
	Count(ctx context.Context, collection string, q query.Translated) (int, error)
}
