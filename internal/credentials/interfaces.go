// Package credentials persists the signed-in user's tokens between process
// launches. The file-backed implementation encrypts the stored blob with a
// key derived from an app-level secret, so a credential file lifted off the
// device is useless without that secret.
package credentials

import "github.com/driftstore/driftstore/models"

// Store loads and saves user credentials for one application. Entries are
// keyed by user id; an application key passed at construction namespaces
// the storage so two apps sharing a device never see each other's tokens.
type Store interface {
	// Load returns the stored credential for userID.
	// Returns [ErrCredentialNotFound] if none is stored.
	Load(userID string) (models.Credential, error)

	// Store saves the credential, replacing any previous entry for the
	// same user.
	Store(cred models.Credential) error

	// Delete removes the credential for userID. Deleting an absent entry
	// is not an error.
	Delete(userID string) error
}
