package credentials

import (
	"sync"

	"github.com/driftstore/driftstore/models"
)

// MemoryStore is a [Store] that keeps credentials in process memory only.
// Nothing survives a restart; intended for tests and throwaway sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]models.Credential
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]models.Credential)}
}

// Load implements [Store].
func (m *MemoryStore) Load(userID string) (models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.creds[userID]
	if !ok {
		return models.Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

// Store implements [Store].
func (m *MemoryStore) Store(cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds[cred.UserID] = cred
	return nil
}

// Delete implements [Store].
func (m *MemoryStore) Delete(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.creds, userID)
	return nil
}
