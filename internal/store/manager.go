// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/logger"
)

// collectionPair holds the cache and queue of one collection. They share a
// single mutex so cache writes and queue appends for the same collection
// never interleave.
type collectionPair struct {
	mu    *sync.Mutex
	seq   sync.Mutex
	cache *LocalCache
	queue *SyncQueue
}

// Manager owns the sqlite connection and hands out per-collection caches and
// sync queues. All stores obtained from one Manager share the connection;
// pairs are created lazily and reused.
type Manager struct {
	db     *DB
	logger *logger.Logger

	mu    sync.Mutex
	pairs map[string]*collectionPair

	closeOnce sync.Once
	closeErr  error
}

// NewManager opens the local database and applies migrations.
func NewManager(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Manager, error) {
	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}

	log.Debug().
		Str("func", "NewManager").
		Str("dsn", cfg.DB.DSN).
		Msg("local storage ready")

	return &Manager{
		db:     db,
		logger: log,
		pairs:  make(map[string]*collectionPair),
	}, nil
}

func (m *Manager) pair(collection string) *collectionPair {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pairs[collection]
	if !ok {
		mu := &sync.Mutex{}
		p = &collectionPair{
			mu:    mu,
			cache: NewLocalCache(m.db, collection, mu, m.logger),
			queue: NewSyncQueue(m.db, collection, mu, m.logger),
		}
		m.pairs[collection] = p
	}
	return p
}

// GetCache returns the local cache for collection. Repeated calls with the
// same name return the same instance.
func (m *Manager) GetCache(collection string) Cache {
	return m.pair(collection).cache
}

// GetSyncQueue returns the pending-write queue for collection.
func (m *Manager) GetSyncQueue(collection string) Queue {
	return m.pair(collection).queue
}

// WriteLock returns the lock serializing multi-step write sequences against
// collection's cache and queue. The pair mutex only guards individual
// statements; callers pairing a cache write with a queue append hold this
// across both so the queue replays writes in the order the cache saw them.
func (m *Manager) WriteLock(collection string) sync.Locker {
	return &m.pair(collection).seq
}

// Close closes the underlying database. Safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.db.Close()
	})
	return m.closeErr
}
