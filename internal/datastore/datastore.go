// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package datastore implements the per-collection facade combining the
// local cache, the sync queue, and the network fetcher under a configured
// cache policy (see [StoreType]).
//
// A DataStore is typed: the generic parameter is the caller's entity struct,
// which must embed [models.DocumentBase] (or otherwise satisfy
// [models.Entity] through its pointer). Payloads cross the cache and
// transport boundaries as raw JSON; decoding happens only at this layer.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/driftstore/driftstore/internal/adapter"
	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/internal/store"
	"github.com/driftstore/driftstore/internal/utils"
	"github.com/driftstore/driftstore/models"
)

// Deps are the collaborators a DataStore orchestrates. Cache and Queue may
// be nil for a NETWORK-type store; every other policy requires all three.
// WriteLock serializes cache-write-plus-enqueue sequences across every store
// sharing the collection (store.Manager.WriteLock hands out the shared one);
// when nil a store-local lock is used.
type Deps struct {
	Cache     store.Cache
	Queue     store.Queue
	Fetcher   adapter.Fetcher
	WriteLock sync.Locker
	Logger    *logger.Logger
}

// DataStore is the typed facade over one collection.
type DataStore[T any, PT interface {
	*T
	models.Entity
}] struct {
	collection string
	storeType  StoreType
	cache      store.Cache
	queue      store.Queue
	fetcher    adapter.Fetcher
	writeMu    sync.Locker
	translator *query.Translator
	ids        *utils.UUIDGenerator
	cfg        config.Sync
	logger     *logger.Logger
}

// New builds a DataStore for collection under the given policy. wireNames is
// the explicit member-to-wire-name map backing query translation for T; the
// ID member is always mapped.
func New[T any, PT interface {
	*T
	models.Entity
}](collection string, storeType StoreType, wireNames map[string]string, deps Deps, syncCfg config.Sync) (*DataStore[T, PT], error) {
	if collection == "" {
		return nil, errors.New("collection name is required")
	}
	if !storeType.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
	if deps.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if storeType.usesQueue() && (deps.Cache == nil || deps.Queue == nil) {
		return nil, fmt.Errorf("store type %s requires a cache and a sync queue", storeType)
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	writeMu := deps.WriteLock
	if writeMu == nil {
		writeMu = &sync.Mutex{}
	}

	return &DataStore[T, PT]{
		collection: collection,
		storeType:  storeType,
		cache:      deps.Cache,
		queue:      deps.Queue,
		fetcher:    deps.Fetcher,
		writeMu:    writeMu,
		translator: query.NewTranslator(wireNames),
		ids:        utils.NewUUIDGenerator(),
		cfg:        syncCfg,
		logger:     log,
	}, nil
}

// Collection returns the backing collection name.
func (d *DataStore[T, PT]) Collection() string { return d.collection }

// Type returns the configured cache policy.
func (d *DataStore[T, PT]) Type() StoreType { return d.storeType }

func (d *DataStore[T, PT]) translate(q *query.Query) (query.Translated, error) {
	if q == nil {
		return query.All(), nil
	}
	return d.translator.Translate(q)
}

// Find returns the entities matching q. A nil q matches the whole
// collection. Where the results come from is the policy's call: NETWORK
// always fetches remote and fails outright when disconnected; SYNC reads
// only the local cache; CACHE refreshes from the network first when the
// queue is clean; AUTO fetches remote and falls back to the cache on
// connectivity failure.
func (d *DataStore[T, PT]) Find(ctx context.Context, q *query.Query) ([]T, error) {
	tr, err := d.translate(q)
	if err != nil {
		return nil, err
	}

	switch d.storeType {
	case StoreTypeNetwork:
		docs, err := d.fetcher.Find(ctx, d.collection, tr)
		if err != nil {
			return nil, err
		}
		return decodeAll[T](docs)

	case StoreTypeSync:
		return d.findLocal(ctx, tr)

	case StoreTypeCache:
		if _, err := d.refresh(ctx, tr); err != nil && !errors.Is(err, adapter.ErrNetwork) {
			return nil, err
		}
		return d.findLocal(ctx, tr)

	case StoreTypeAuto:
		docs, err := d.fetcher.Find(ctx, d.collection, tr)
		if err != nil {
			if errors.Is(err, adapter.ErrNetwork) {
				d.logger.Debug().
					Str("func", "DataStore.Find").
					Str("collection", d.collection).
					Msg("network unreachable, serving cached results")
				return d.findLocal(ctx, tr)
			}
			return nil, err
		}
		if err = d.cacheDocs(ctx, docs); err != nil {
			return nil, err
		}
		return decodeAll[T](docs)
	}

	return nil, ErrInvalidStoreType
}

// Count reports how many entities match q, applying the same source policy
// as Find: NETWORK and AUTO ask the backend (AUTO counts the cache when
// disconnected), SYNC counts the cache, CACHE refreshes first when the
// queue is clean.
func (d *DataStore[T, PT]) Count(ctx context.Context, q *query.Query) (int, error) {
	tr, err := d.translate(q)
	if err != nil {
		return 0, err
	}

	switch d.storeType {
	case StoreTypeNetwork:
		return d.fetcher.Count(ctx, d.collection, tr)

	case StoreTypeSync:
		return d.countLocal(ctx, tr)

	case StoreTypeCache:
		if _, err := d.refresh(ctx, tr); err != nil && !errors.Is(err, adapter.ErrNetwork) {
			return 0, err
		}
		return d.countLocal(ctx, tr)

	case StoreTypeAuto:
		n, err := d.fetcher.Count(ctx, d.collection, tr)
		if err != nil {
			if errors.Is(err, adapter.ErrNetwork) {
				return d.countLocal(ctx, tr)
			}
			return 0, err
		}
		return n, nil
	}

	return 0, ErrInvalidStoreType
}

func (d *DataStore[T, PT]) countLocal(ctx context.Context, tr query.Translated) (int, error) {
	records, err := d.cache.FindByQuery(ctx, tr)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// FindByID returns the entity with the given id, or
// [store.ErrEntityNotFound].
func (d *DataStore[T, PT]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T

	switch d.storeType {
	case StoreTypeNetwork:
		doc, err := d.fetcher.FindByID(ctx, d.collection, id)
		if err != nil {
			return zero, remapNotFound(err)
		}
		return decode[T](doc)

	case StoreTypeSync:
		rec, err := d.cache.FindByID(ctx, id)
		if err != nil {
			return zero, err
		}
		return decode[T](rec.Payload)

	case StoreTypeCache:
		rec, err := d.cache.FindByID(ctx, id)
		if err == nil {
			return decode[T](rec.Payload)
		}
		if !errors.Is(err, store.ErrEntityNotFound) {
			return zero, err
		}
		doc, err := d.fetcher.FindByID(ctx, d.collection, id)
		if err != nil {
			return zero, remapNotFound(err)
		}
		if err = d.cacheDocs(ctx, []json.RawMessage{doc}); err != nil {
			return zero, err
		}
		return decode[T](doc)

	case StoreTypeAuto:
		doc, err := d.fetcher.FindByID(ctx, d.collection, id)
		if err != nil {
			if errors.Is(err, adapter.ErrNetwork) {
				rec, cacheErr := d.cache.FindByID(ctx, id)
				if cacheErr != nil {
					return zero, cacheErr
				}
				return decode[T](rec.Payload)
			}
			return zero, remapNotFound(err)
		}
		if err = d.cacheDocs(ctx, []json.RawMessage{doc}); err != nil {
			return zero, err
		}
		return decode[T](doc)
	}

	return zero, ErrInvalidStoreType
}

// Save persists the entity. Under NETWORK the write goes straight to the
// backend and the returned value carries the backend-assigned id and
// metadata. Under SYNC/CACHE the entity lands in the local cache (with a
// temporary id if new) and a pending action is queued; nothing is committed
// when either step fails. AUTO tries the network path first and queues on
// connectivity failure.
func (d *DataStore[T, PT]) Save(ctx context.Context, entity PT) (T, error) {
	var zero T

	switch d.storeType {
	case StoreTypeNetwork:
		return d.saveRemote(ctx, entity)

	case StoreTypeSync, StoreTypeCache:
		return d.saveLocal(ctx, entity)

	case StoreTypeAuto:
		saved, err := d.saveRemote(ctx, entity)
		if err != nil {
			if errors.Is(err, adapter.ErrNetwork) {
				return d.saveLocal(ctx, entity)
			}
			return zero, err
		}
		return saved, nil
	}

	return zero, ErrInvalidStoreType
}

// Delete removes the entity and returns the deletion count. Under
// SYNC/CACHE the removal is local plus a queued DELETE; the count reflects
// the local cache only.
func (d *DataStore[T, PT]) Delete(ctx context.Context, id string) (int, error) {
	switch d.storeType {
	case StoreTypeNetwork:
		return d.fetcher.Delete(ctx, d.collection, id)

	case StoreTypeSync, StoreTypeCache:
		return d.deleteLocal(ctx, id)

	case StoreTypeAuto:
		count, err := d.fetcher.Delete(ctx, d.collection, id)
		if err != nil {
			if errors.Is(err, adapter.ErrNetwork) {
				return d.deleteLocal(ctx, id)
			}
			return 0, err
		}
		if _, err = d.cache.Delete(ctx, id); err != nil {
			return count, err
		}
		return count, nil
	}

	return 0, ErrInvalidStoreType
}

func (d *DataStore[T, PT]) saveRemote(ctx context.Context, entity PT) (T, error) {
	var zero T

	payload, err := json.Marshal(entity)
	if err != nil {
		return zero, fmt.Errorf("encode entity: %w", err)
	}

	var doc json.RawMessage
	if entity.EntityID() == "" {
		doc, err = d.fetcher.Create(ctx, d.collection, payload)
	} else {
		doc, err = d.fetcher.Update(ctx, d.collection, entity.EntityID(), payload)
	}
	if err != nil {
		return zero, err
	}

	if d.cache != nil {
		if err = d.cacheDocs(ctx, []json.RawMessage{doc}); err != nil {
			return zero, err
		}
	}

	return decode[T](doc)
}

func (d *DataStore[T, PT]) saveLocal(ctx context.Context, entity PT) (T, error) {
	var zero T

	action := models.ActionPut
	if entity.EntityID() == "" {
		entity.SetEntityID(d.ids.TempID())
		action = models.ActionPost
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return zero, fmt.Errorf("encode entity: %w", err)
	}

	// the cache write and the queue append must land as one unit, or a
	// concurrent save could leave the queue replaying writes in a
	// different order than the cache applied them
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	rec := models.CacheRecord{EntityID: entity.EntityID(), Payload: payload}
	if err = d.cache.Save(ctx, rec); err != nil {
		return zero, err
	}

	err = d.queue.Push(ctx, models.PendingWriteAction{
		Action:   action,
		EntityID: entity.EntityID(),
		Payload:  payload,
	})
	if err != nil {
		return zero, err
	}

	return *(*T)(entity), nil
}

func (d *DataStore[T, PT]) deleteLocal(ctx context.Context, id string) (int, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	existed, err := d.cache.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	// the entity may exist remotely even when absent locally, so the
	// delete is queued either way
	err = d.queue.Push(ctx, models.PendingWriteAction{
		Action:   models.ActionDelete,
		EntityID: id,
	})
	if err != nil {
		return 0, err
	}

	if existed {
		return 1, nil
	}
	return 0, nil
}

func (d *DataStore[T, PT]) findLocal(ctx context.Context, tr query.Translated) ([]T, error) {
	records, err := d.cache.FindByQuery(ctx, tr)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := decode[T](rec.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// refresh brings the cached result set for tr up to date from the network.
// It is skipped while pending writes exist, so queued local changes are
// never overwritten by a read. With delta-set enabled and a recorded
// previous fetch, only changes since that fetch are requested. Returns the
// number of changed or fetched documents.
func (d *DataStore[T, PT]) refresh(ctx context.Context, tr query.Translated) (int, error) {
	pending, err := d.queue.Count(ctx)
	if err != nil {
		return 0, err
	}
	if pending > 0 {
		d.logger.Debug().
			Str("func", "DataStore.refresh").
			Str("collection", d.collection).
			Int("pending", pending).
			Msg("skipping network refresh while writes are queued")
		return 0, nil
	}

	return d.pullInto(ctx, tr)
}

// pullInto fetches tr's result set (full or delta) and merges it into the
// local cache. Query metadata is updated only after the merge succeeds.
func (d *DataStore[T, PT]) pullInto(ctx context.Context, tr query.Translated) (int, error) {
	queryString := tr.QueryString()
	requestTime := time.Now().UTC()

	if d.cfg.DeltaSet {
		meta, err := d.cache.QueryMetadata(ctx, queryString)
		if err != nil {
			return 0, err
		}
		if meta != nil {
			delta, err := d.fetcher.FindDelta(ctx, d.collection, tr, meta.LastRequestTime)
			if err != nil {
				return 0, err
			}
			if err = d.mergeDelta(ctx, delta); err != nil {
				return 0, err
			}
			if err = d.cache.SetQueryMetadata(ctx, queryString, requestTime); err != nil {
				return 0, err
			}
			return len(delta.Changed), nil
		}
	}

	docs, err := d.fetcher.Find(ctx, d.collection, tr)
	if err != nil {
		return 0, err
	}
	if err = d.cacheDocs(ctx, docs); err != nil {
		return 0, err
	}
	if err = d.cache.SetQueryMetadata(ctx, queryString, requestTime); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// mergeDelta applies a delta-set response: changed documents are upserted,
// deleted ids are removed. Deleting an id the cache never held is a no-op.
func (d *DataStore[T, PT]) mergeDelta(ctx context.Context, delta models.DeltaSetResponse) error {
	if err := d.cacheDocs(ctx, delta.Changed); err != nil {
		return err
	}
	for _, ref := range delta.Deleted {
		if _, err := d.cache.Delete(ctx, ref.ID); err != nil {
			return err
		}
	}
	return nil
}

func (d *DataStore[T, PT]) cacheDocs(ctx context.Context, docs []json.RawMessage) error {
	if len(docs) == 0 {
		return nil
	}

	records := make([]models.CacheRecord, 0, len(docs))
	for _, doc := range docs {
		id, err := entityIDOf(doc)
		if err != nil {
			return err
		}
		records = append(records, models.CacheRecord{EntityID: id, Payload: doc})
	}
	return d.cache.Save(ctx, records...)
}

func entityIDOf(doc json.RawMessage) (string, error) {
	var probe struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return "", fmt.Errorf("decode entity id: %w", err)
	}
	if probe.ID == "" {
		return "", errors.New("backend document has no _id")
	}
	return probe.ID, nil
}

func decode[T any](doc json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode entity: %w", err)
	}
	return v, nil
}

func decodeAll[T any](docs []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// remapNotFound turns the backend's 404 into the same not-found sentinel
// local reads produce, so callers handle one error either way.
func remapNotFound(err error) error {
	if errors.Is(err, adapter.ErrNotFound) {
		return fmt.Errorf("%w: %w", store.ErrEntityNotFound, err)
	}
	return err
}
