// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/driftstore/driftstore/models"
)

// sb is the shared statement builder. SQLite uses `?` placeholders.
var sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func upsertEntitySQL(rec models.CacheRecord) (string, []any, error) {
	return sb.Insert("cache_entities").
		Columns("collection", "entity_id", "payload", "saved_at").
		Values(rec.Collection, rec.EntityID, string(rec.Payload), rec.SavedAt).
		Suffix("ON CONFLICT(collection, entity_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at").
		ToSql()
}

func selectEntitySQL(collection, entityID string) (string, []any, error) {
	return sb.Select("collection", "entity_id", "payload", "saved_at").
		From("cache_entities").
		Where(sq.Eq{"collection": collection, "entity_id": entityID}).
		ToSql()
}

func selectAllEntitiesSQL(collection string) (string, []any, error) {
	return sb.Select("collection", "entity_id", "payload", "saved_at").
		From("cache_entities").
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func deleteEntitySQL(collection, entityID string) (string, []any, error) {
	return sb.Delete("cache_entities").
		Where(sq.Eq{"collection": collection, "entity_id": entityID}).
		ToSql()
}

func replaceEntityIDSQL(collection, oldID, newID string, payload string) (string, []any, error) {
	return sb.Update("cache_entities").
		Set("entity_id", newID).
		Set("payload", payload).
		Set("saved_at", time.Now().UTC()).
		Where(sq.Eq{"collection": collection, "entity_id": oldID}).
		ToSql()
}

func clearEntitiesSQL(collection string) (string, []any, error) {
	return sb.Delete("cache_entities").
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func countEntitiesSQL(collection string) (string, []any, error) {
	return sb.Select("COUNT(*)").
		From("cache_entities").
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func upsertQueryMetadataSQL(item models.QueryCacheItem) (string, []any, error) {
	return sb.Insert("query_cache").
		Columns("collection", "query_string", "last_request_time").
		Values(item.Collection, item.QueryString, item.LastRequestTime).
		Suffix("ON CONFLICT(collection, query_string) DO UPDATE SET last_request_time = excluded.last_request_time").
		ToSql()
}

func selectQueryMetadataSQL(collection, queryString string) (string, []any, error) {
	return sb.Select("collection", "query_string", "last_request_time").
		From("query_cache").
		Where(sq.Eq{"collection": collection, "query_string": queryString}).
		ToSql()
}

func insertPendingActionSQL(action models.PendingWriteAction) (string, []any, error) {
	return sb.Insert("sync_queue").
		Columns("collection", "action", "entity_id", "payload", "enqueued_at").
		Values(action.Collection, string(action.Action), action.EntityID, string(action.Payload), action.EnqueuedAt).
		ToSql()
}

func selectOldestPendingActionSQL(collection string) (string, []any, error) {
	return sb.Select("seq", "collection", "action", "entity_id", "payload", "enqueued_at").
		From("sync_queue").
		Where(sq.Eq{"collection": collection}).
		OrderBy("seq ASC").
		Limit(1).
		ToSql()
}

func deletePendingActionSQL(seq int64) (string, []any, error) {
	return sb.Delete("sync_queue").
		Where(sq.Eq{"seq": seq}).
		ToSql()
}

func countPendingActionsSQL(collection string) (string, []any, error) {
	return sb.Select("COUNT(*)").
		From("sync_queue").
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func purgePendingActionsSQL(collection string) (string, []any, error) {
	return sb.Delete("sync_queue").
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func selectPendingActionsByEntitySQL(collection, entityID string) (string, []any, error) {
	return sb.Select("seq", "payload").
		From("sync_queue").
		Where(sq.Eq{"collection": collection, "entity_id": entityID}).
		OrderBy("seq ASC").
		ToSql()
}

func updatePendingActionEntitySQL(seq int64, entityID, payload string) (string, []any, error) {
	return sb.Update("sync_queue").
		Set("entity_id", entityID).
		Set("payload", payload).
		Where(sq.Eq{"seq": seq}).
		ToSql()
}
