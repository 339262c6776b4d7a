// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package config

import (
	"strings"
	"time"
)

// validate checks that the final merged [ClientConfig] satisfies the SDK's
// invariants before any component is constructed, and fills the defaults the
// host application is allowed to omit.
func (cfg *ClientConfig) validate() error {
	if cfg.App.BaseURL == "" || cfg.App.AppKey == "" {
		return ErrInvalidAppConfigs
	}
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	if cfg.App.RequestTimeout <= 0 {
		cfg.App.RequestTimeout = 15 * time.Second
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.Interval < 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
