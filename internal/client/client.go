// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package client assembles the SDK into a single object: the shared cache
// manager, the backend fetcher, the credential store, and the optional
// background components (autosync, realtime stream). Every piece is owned
// by the Client value; nothing lives in package globals.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/driftstore/driftstore/internal/adapter"
	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/credentials"
	"github.com/driftstore/driftstore/internal/datastore"
	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/realtime"
	"github.com/driftstore/driftstore/internal/store"
	"github.com/driftstore/driftstore/internal/workers"
	"github.com/driftstore/driftstore/models"
)

var (
	// ErrSessionExpired is returned by RestoreSession when the stored auth
	// token has passed its expiry; the stored credential is removed.
	ErrSessionExpired = errors.New("stored session has expired")

	// ErrNotLoggedIn is returned by credential operations that need an
	// active user when none is set.
	ErrNotLoggedIn = errors.New("no active user")

	// ErrStreamConnected is returned by a second ConnectStream.
	ErrStreamConnected = errors.New("realtime stream already connected")

	// ErrAutoSyncDisabled is returned by StartAutoSync when the configured
	// sync interval is zero.
	ErrAutoSyncDisabled = errors.New("autosync is disabled by configuration")

	// ErrAutoSyncRunning is returned by a second StartAutoSync.
	ErrAutoSyncRunning = errors.New("autosync already running")
)

// Client is the entry point of the SDK. It owns the SQLite cache manager,
// the HTTP fetcher, the credential store, and the lifecycle of background
// workers. Construct one per application, share it, and Close it on exit.
type Client struct {
	cfg     *config.ClientConfig
	logger  *logger.Logger
	manager *store.Manager
	fetcher adapter.Fetcher
	creds   credentials.Store

	// credMu guards the active credential only. It is never held across
	// cache or queue calls, so it cannot form a lock cycle with the
	// per-collection pair mutex.
	credMu   sync.Mutex
	active   models.Credential
	loggedIn bool

	// mu guards the background lifecycle state below.
	mu         sync.Mutex
	background *workers.Workers
	router     *realtime.Router
	syncJob    *datastore.SyncJob

	closeOnce sync.Once
	closeErr  error
}

// New builds a Client from cfg: it opens (and migrates) the cache database
// and prepares the backend fetcher and the credential store. When
// cfg.Storage.Credentials.Path is empty credentials live in process memory
// only.
func New(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	manager, err := store.NewManager(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open cache storage: %w", err)
	}

	var creds credentials.Store
	if cfg.Storage.Credentials.Path != "" {
		creds, err = credentials.NewFileStore(cfg.Storage.Credentials.Path, cfg.App.AppKey, cfg.App.AppSecret)
		if err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("open credential store: %w", err)
		}
	} else {
		creds = credentials.NewMemoryStore()
	}

	return &Client{
		cfg:        cfg,
		logger:     log,
		manager:    manager,
		fetcher:    adapter.NewHTTPFetcher(cfg.App),
		creds:      creds,
		background: workers.New(),
	}, nil
}

// Login persists cred and makes it the active session: subsequent backend
// requests carry its auth token.
func (c *Client) Login(cred models.Credential) error {
	if cred.UserID == "" || cred.AuthToken == "" {
		return errors.New("credential user id and auth token are required")
	}
	if err := c.creds.Store(cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	c.credMu.Lock()
	c.active = cred
	c.loggedIn = true
	c.credMu.Unlock()

	c.fetcher.SetToken(cred.AuthToken)
	return nil
}

// RestoreSession loads the stored credential for userID and reactivates it.
// An expired token is removed from the store and reported as
// [ErrSessionExpired]; the caller then runs a fresh login flow.
func (c *Client) RestoreSession(userID string) (models.Credential, error) {
	cred, err := c.creds.Load(userID)
	if err != nil {
		return models.Credential{}, err
	}

	if credentials.TokenExpired(cred.AuthToken, time.Now()) {
		if delErr := c.creds.Delete(userID); delErr != nil {
			c.logger.Warn().Err(delErr).Str("func", "RestoreSession").Msg("failed to drop expired credential")
		}
		return models.Credential{}, ErrSessionExpired
	}

	c.credMu.Lock()
	c.active = cred
	c.loggedIn = true
	c.credMu.Unlock()

	c.fetcher.SetToken(cred.AuthToken)
	return cred, nil
}

// Logout drops the active session and removes its stored credential.
func (c *Client) Logout() error {
	c.credMu.Lock()
	if !c.loggedIn {
		c.credMu.Unlock()
		return ErrNotLoggedIn
	}
	userID := c.active.UserID
	c.active = models.Credential{}
	c.loggedIn = false
	c.credMu.Unlock()

	c.fetcher.SetToken("")
	return c.creds.Delete(userID)
}

// ActiveUser returns the active credential, if a session is set.
func (c *Client) ActiveUser() (models.Credential, bool) {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	return c.active, c.loggedIn
}

// ConnectStream attaches a realtime transport and starts routing its
// events. The router lives until Close.
func (c *Client) ConnectStream(ctx context.Context, conn realtime.StreamConnection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.router != nil {
		return ErrStreamConnected
	}

	router := realtime.NewRouter(conn, c.logger)
	if err := c.background.Start(ctx, routerWorker{router}); err != nil {
		return fmt.Errorf("connect realtime stream: %w", err)
	}
	c.router = router
	return nil
}

// Stream returns the realtime router, or nil before ConnectStream.
func (c *Client) Stream() *realtime.Router {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.router
}

// StartAutoSync launches the ticker-driven background sync over the given
// collections. The interval comes from cfg.Sync.Interval; zero disables
// autosync entirely.
func (c *Client) StartAutoSync(ctx context.Context, syncers ...datastore.Syncer) error {
	if c.cfg.Sync.Interval == 0 {
		return ErrAutoSyncDisabled
	}
	if len(syncers) == 0 {
		return errors.New("at least one collection syncer is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.syncJob != nil {
		return ErrAutoSyncRunning
	}

	job := datastore.NewSyncJob(c.cfg.Sync.Interval, c.logger, syncers...)
	if err := c.background.Start(ctx, syncJobWorker{job}); err != nil {
		return err
	}
	c.syncJob = job
	return nil
}

// Close stops background workers (autosync, realtime) and closes the cache
// database. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.background.Stop()

		c.mu.Lock()
		c.router = nil
		c.syncJob = nil
		c.mu.Unlock()

		c.closeErr = c.manager.Close()
	})
	return c.closeErr
}
