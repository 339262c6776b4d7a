// Package config provides configuration loading, merging, and validation
// facilities for the SDK.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables (DRIFT_ prefix)
//  2. Programmatic overrides supplied by the host application
//  3. JSON config file (path from DRIFT_CONFIG or an override)
//
// The main entry point is [GetClientConfig].
package config
