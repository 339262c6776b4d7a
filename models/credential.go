// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package models

// Credential is the authenticated-user state persisted between launches so a
// returning user is signed in without re-entering a password. The auth token
// is the bearer credential presented on every backend request.
type Credential struct {
	// UserID is the backend identifier of the signed-in user.
	UserID string `json:"user_id"`

	// AuthToken is the bearer token attached to backend requests.
	AuthToken string `json:"auth_token"`

	// RefreshToken, when present, lets the client obtain a new auth token
	// after the current one expires.
	RefreshToken string `json:"refresh_token,omitempty"`
}
