package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid backend endpoint settings
	// (for example, missing base URL or app key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty cache database DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid synchronization settings
	// (for example, a negative autosync interval).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
