package ports

import "github.com/rentora/access-layer/internal/core/domain"

// CredentialStore holds one bearer token per role. Calls are synchronous and
// safe before any network activity. Implementations must keep storage keys
// role-qualified (domain.CredentialKey) so that clearing one role never
// touches another.
type CredentialStore interface {
	// Get returns domain.ErrNoCredential when the role's slot is empty.
	Get(role domain.Role) (string, error)
	Set(role domain.Role, token string) error
	// Clear empties the role's slot. Clearing an empty slot is a no-op.
	Clear(role domain.Role) error
}
