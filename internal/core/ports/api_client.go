package ports

import (
	"context"
	"encoding/json"

	"github.com/rentora/access-layer/internal/core/domain"
)

// APIClient is the caller surface consumed by page components.
type APIClient interface {
	Get(ctx context.Context, role domain.Role, path string) (json.RawMessage, error)
	Create(ctx context.Context, role domain.Role, path string, payload domain.Payload) (json.RawMessage, error)
	Replace(ctx context.Context, role domain.Role, path string, payload domain.Payload) (json.RawMessage, error)
	Delete(ctx context.Context, role domain.Role, path string) (json.RawMessage, error)
	Download(ctx context.Context, role domain.Role, path string) ([]byte, error)
	// Login bypasses credential attachment and error normalization.
	Login(ctx context.Context, path string, payload domain.Payload) (json.RawMessage, error)
}

// SessionService manages the lifecycle of each role's credential slot.
type SessionService interface {
	SignIn(ctx context.Context, role domain.Role, in domain.SignInInput) (*domain.SessionStatus, error)
	SignOut(role domain.Role) error
	Status(role domain.Role) (*domain.SessionStatus, error)
}
