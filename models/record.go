package models

import (
	"encoding/json"
	"time"
)

// CacheRecord is the local cache's stored representation of one entity:
// the serialized document keyed by (collection, entity id). At most one
// record exists per key; saves are last-write-wins.
type CacheRecord struct {
	Collection string          `json:"collection"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	SavedAt    time.Time       `json:"saved_at"`
}

// QueryCacheItem memoizes the time of the last successful remote fetch for a
// (collection, query string) pair so delta fetches can request only changes
// since that point. It is written only after a successful network response.
type QueryCacheItem struct {
	Collection      string    `json:"collection"`
	QueryString     string    `json:"query_string"`
	LastRequestTime time.Time `json:"last_request_time"`
}
