package models

import "encoding/json"

// EntityIDRef identifies a deleted entity inside a delta-set response.
type EntityIDRef struct {
	ID string `json:"_id"`
}

// DeltaSetResponse is the backend's answer to a delta fetch: the documents
// changed since the requested timestamp plus references to the documents
// deleted in the same window. It is consumed and merged into the local
// cache, never persisted as-is.
type DeltaSetResponse struct {
	Changed []json.RawMessage `json:"changed"`
	Deleted []EntityIDRef     `json:"deleted"`
}
