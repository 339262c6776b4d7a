package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

// LocalCache is the SQLite-backed entity store for one collection. All
// instances for a collection share the pair mutex with that collection's
// [SyncQueue], so read-modify-write sequences on the pair are serialized.
type LocalCache struct {
	db         *DB
	collection string
	mu         *sync.Mutex
	logger     *logger.Logger
}

var _ Cache = (*LocalCache)(nil)

// NewLocalCache is used by [Manager]; tests may construct caches directly
// over an open DB.
func NewLocalCache(db *DB, collection string, mu *sync.Mutex, log *logger.Logger) *LocalCache {
	return &LocalCache{
		db:         db,
		collection: collection,
		mu:         mu,
		logger:     log,
	}
}

// Save implements [Cache]. Each record is upserted independently; the first
// storage failure stops the batch and surfaces as a [CacheWriteError]
// identifying the failing entity. Records written before the failure remain
// written.
func (c *LocalCache) Save(ctx context.Context, records ...models.CacheRecord) error {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		rec.Collection = c.collection
		if rec.SavedAt.IsZero() {
			rec.SavedAt = time.Now().UTC()
		}

		sqlStr, args, err := upsertEntitySQL(rec)
		if err != nil {
			return &CacheWriteError{Code: CodeCacheSaveEntity, Collection: c.collection, EntityID: rec.EntityID, Err: err}
		}

		if _, err = c.db.ExecContext(ctx, sqlStr, args...); err != nil {
			log.Err(err).
				Str("func", "LocalCache.Save").
				Str("collection", c.collection).
				Str("entity_id", rec.EntityID).
				Msg("failed to execute upsert for cache record")
			return &CacheWriteError{Code: CodeCacheSaveEntity, Collection: c.collection, EntityID: rec.EntityID, Err: err}
		}
	}

	return nil
}

// FindByID implements [Cache].
func (c *LocalCache) FindByID(ctx context.Context, id string) (models.CacheRecord, error) {
	log := logger.FromContext(ctx)

	sqlStr, args, err := selectEntitySQL(c.collection, id)
	if err != nil {
		return models.CacheRecord{}, fmt.Errorf("build select query: %w", err)
	}

	var rec models.CacheRecord
	var payload string
	row := c.db.QueryRowContext(ctx, sqlStr, args...)
	if err = row.Scan(&rec.Collection, &rec.EntityID, &payload, &rec.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CacheRecord{}, ErrEntityNotFound
		}
		log.Err(err).
			Str("func", "LocalCache.FindByID").
			Str("collection", c.collection).
			Str("entity_id", id).
			Msg("failed to scan cache record row")
		return models.CacheRecord{}, fmt.Errorf("failed to scan cache record row: %w", err)
	}

	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

// FindAll implements [Cache].
func (c *LocalCache) FindAll(ctx context.Context) ([]models.CacheRecord, error) {
	log := logger.FromContext(ctx)

	sqlStr, args, err := selectAllEntitiesSQL(c.collection)
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Err(err).
			Str("func", "LocalCache.FindAll").
			Str("collection", c.collection).
			Msg("failed to execute query for all cache records")
		return nil, fmt.Errorf("failed to query all cache records: %w", err)
	}
	defer rows.Close()

	var records []models.CacheRecord
	for rows.Next() {
		var rec models.CacheRecord
		var payload string
		if err = rows.Scan(&rec.Collection, &rec.EntityID, &payload, &rec.SavedAt); err != nil {
			log.Err(err).
				Str("func", "LocalCache.FindAll").
				Str("collection", c.collection).
				Msg("failed to scan cache record row")
			return nil, fmt.Errorf("failed to scan cache record row: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating cache record rows: %w", rowsErr)
	}

	return records, nil
}

// FindByQuery implements [Cache]. Records are filtered with an [Evaluator]
// over the parsed payloads, then the translated sort/skip/limit/fields
// modifiers are applied in the same order the backend applies them.
func (c *LocalCache) FindByQuery(ctx context.Context, q query.Translated) ([]models.CacheRecord, error) {
	eval, err := NewEvaluator(q.Filter)
	if err != nil {
		return nil, err
	}

	records, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	type parsed struct {
		rec models.CacheRecord
		doc map[string]any
	}

	matched := make([]parsed, 0, len(records))
	for _, rec := range records {
		var doc map[string]any
		if err := json.Unmarshal(rec.Payload, &doc); err != nil {
			return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: q.Filter, Err: fmt.Errorf("entity %s: %w", rec.EntityID, err)}
		}
		if eval.Matches(doc) {
			matched = append(matched, parsed{rec: rec, doc: doc})
		}
	}

	plan, err := parseModifiers(q.Modifiers)
	if err != nil {
		return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: q.Filter, Err: err}
	}

	if plan.sortModifier != "" {
		less, err := query.SortComparer(plan.sortModifier)
		if err != nil {
			return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: q.Filter, Err: err}
		}
		sort.SliceStable(matched, func(i, j int) bool { return less(matched[i].doc, matched[j].doc) })
	}

	skip, limit, fields := plan.skip, plan.limit, plan.fields
	if skip > 0 {
		if skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[skip:]
		}
	}
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]models.CacheRecord, 0, len(matched))
	for _, p := range matched {
		rec := p.rec
		if len(fields) > 0 {
			projected, err := projectFields(p.doc, fields)
			if err != nil {
				return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: q.Filter, Err: err}
			}
			rec.Payload = projected
		}
		out = append(out, rec)
	}

	return out, nil
}

// Delete implements [Cache]. Deleting a missing id is a no-op returning
// false.
func (c *LocalCache) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	sqlStr, args, err := deleteEntitySQL(c.collection, id)
	if err != nil {
		return false, &CacheWriteError{Code: CodeCacheDeleteEntity, Collection: c.collection, EntityID: id, Err: err}
	}

	res, err := c.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Err(err).
			Str("func", "LocalCache.Delete").
			Str("collection", c.collection).
			Str("entity_id", id).
			Msg("failed to execute delete for cache record")
		return false, &CacheWriteError{Code: CodeCacheDeleteEntity, Collection: c.collection, EntityID: id, Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &CacheWriteError{Code: CodeCacheDeleteEntity, Collection: c.collection, EntityID: id, Err: err}
	}

	return affected > 0, nil
}

// ReplaceID implements [Cache].
func (c *LocalCache) ReplaceID(ctx context.Context, oldID, newID string, payload json.RawMessage) error {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	sqlStr, args, err := replaceEntityIDSQL(c.collection, oldID, newID, string(payload))
	if err != nil {
		return &CacheWriteError{Code: CodeCacheReplaceID, Collection: c.collection, EntityID: oldID, Err: err}
	}

	if _, err = c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		log.Err(err).
			Str("func", "LocalCache.ReplaceID").
			Str("collection", c.collection).
			Str("entity_id", oldID).
			Str("new_entity_id", newID).
			Msg("failed to rewrite entity id")
		return &CacheWriteError{Code: CodeCacheReplaceID, Collection: c.collection, EntityID: oldID, Err: err}
	}

	return nil
}

// Clear implements [Cache].
func (c *LocalCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sqlStr, args, err := clearEntitiesSQL(c.collection)
	if err != nil {
		return &CacheWriteError{Code: CodeCacheDeleteEntity, Collection: c.collection, Err: err}
	}

	if _, err = c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return &CacheWriteError{Code: CodeCacheDeleteEntity, Collection: c.collection, Err: err}
	}

	return nil
}

// Count implements [Cache].
func (c *LocalCache) Count(ctx context.Context) (int, error) {
	sqlStr, args, err := countEntitiesSQL(c.collection)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err = c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache records: %w", err)
	}
	return n, nil
}

// QueryMetadata implements [Cache].
func (c *LocalCache) QueryMetadata(ctx context.Context, queryString string) (*models.QueryCacheItem, error) {
	sqlStr, args, err := selectQueryMetadataSQL(c.collection, queryString)
	if err != nil {
		return nil, fmt.Errorf("build metadata query: %w", err)
	}

	var item models.QueryCacheItem
	row := c.db.QueryRowContext(ctx, sqlStr, args...)
	if err = row.Scan(&item.Collection, &item.QueryString, &item.LastRequestTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan query metadata row: %w", err)
	}

	return &item, nil
}

// SetQueryMetadata implements [Cache].
func (c *LocalCache) SetQueryMetadata(ctx context.Context, queryString string, lastRequestTime time.Time) error {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	item := models.QueryCacheItem{
		Collection:      c.collection,
		QueryString:     queryString,
		LastRequestTime: lastRequestTime.UTC(),
	}

	sqlStr, args, err := upsertQueryMetadataSQL(item)
	if err != nil {
		return &CacheWriteError{Code: CodeCacheMetadata, Collection: c.collection, Err: err}
	}

	if _, err = c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		log.Err(err).
			Str("func", "LocalCache.SetQueryMetadata").
			Str("collection", c.collection).
			Str("query_string", queryString).
			Msg("failed to upsert query metadata")
		return &CacheWriteError{Code: CodeCacheMetadata, Collection: c.collection, Err: err}
	}

	return nil
}
