// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package config

import (
	"time"
)

// ClientConfig is the top-level configuration container for a driftstore
// client. It aggregates all sub-configurations and is populated by merging
// values from environment variables, programmatic overrides, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
//
// All env lookups carry the global DRIFT_ prefix.
type ClientConfig struct {
	// App holds the backend endpoint and application credentials.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the on-device persistence backends:
	// the SQLite cache database and the credential file store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the synchronization engine settings.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and overrides.
	// Env: DRIFT_CONFIG
	JSONFilePath string `env:"CONFIG"`
}

// App holds backend endpoint and credential settings.
type App struct {
	// BaseURL is the root URL of the backend instance
	// (e.g. "https://baas.example.com"). Env: DRIFT_APP_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// AppKey identifies the application to the backend.
	// Env: DRIFT_APP_KEY
	AppKey string `env:"KEY"`

	// AppSecret authenticates the application to the backend. Used only for
	// the basic-auth handshake; user requests carry bearer tokens.
	// Env: DRIFT_APP_SECRET
	AppSecret string `env:"SECRET"`

	// RequestTimeout is the per-request deadline for outbound HTTP calls
	// (e.g. "15s"). Env: DRIFT_APP_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for on-device persistence.
type Storage struct {
	// DB holds the local cache database settings.
	DB DB `envPrefix:"DB_"`

	// Credentials holds the encrypted credential file store settings.
	Credentials Credentials `envPrefix:"CREDENTIALS_"`
}

// DB holds connection settings for the local SQLite cache database.
type DB struct {
	// DSN is the SQLite data source name, typically a file path
	// (e.g. "/data/driftstore.db"). Env: DRIFT_STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Credentials holds settings for the on-device credential store.
type Credentials struct {
	// Path is the file the encrypted credential blob is written to.
	// Env: DRIFT_STORAGE_CREDENTIALS_PATH
	Path string `env:"PATH"`
}

// Sync holds synchronization engine settings.
type Sync struct {
	// Interval is the background autosync period (e.g. "5m"). Zero disables
	// the background job. Env: DRIFT_SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// ContinueOnError makes Push keep applying queued actions past a failed
	// item instead of stopping at the first failure.
	// Env: DRIFT_SYNC_CONTINUE_ON_ERROR
	ContinueOnError bool `env:"CONTINUE_ON_ERROR"`

	// DeltaSet enables delta-set fetches on Pull for backends that support
	// them. Env: DRIFT_SYNC_DELTA_SET
	DeltaSet bool `env:"DELTA_SET"`
}
