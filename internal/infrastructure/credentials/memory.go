// Package credentials provides the local CredentialStore backends and the
// factory selecting a backend from configuration.
package credentials

import (
	"sync"

	"github.com/rentora/access-layer/internal/core/domain"
)

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (m *MemoryStore) Get(role domain.Role) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[domain.CredentialKey(role)]
	if !ok {
		return "", domain.ErrNoCredential
	}
	return token, nil
}

func (m *MemoryStore) Set(role domain.Role, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[domain.CredentialKey(role)] = token
	return nil
}

func (m *MemoryStore) Clear(role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, domain.CredentialKey(role))
	return nil
}
