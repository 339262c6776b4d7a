package credentials

import "errors"

var (
	// ErrCredentialNotFound is returned by [Store.Load] when no credential
	// is stored for the requested user.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrCredentialDecrypt is returned when the credential file cannot be
	// decrypted: wrong secret, or a corrupted/tampered blob.
	ErrCredentialDecrypt = errors.New("credential file decrypt failed")
)
