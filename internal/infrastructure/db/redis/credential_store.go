package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentora/access-layer/internal/core/domain"
)

// CredentialStore keeps one key per role.
// Key format: <prefix>:<role>_token
type CredentialStore struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewCredentialStore wraps client. A zero ttl stores credentials without
// expiry.
func NewCredentialStore(client redis.Cmdable, prefix string, ttl time.Duration) *CredentialStore {
	if prefix == "" {
		prefix = "access"
	}
	return &CredentialStore{client: client, prefix: prefix, ttl: ttl, timeout: defaultTimeout}
}

func (s *CredentialStore) Get(role domain.Role) (string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	token, err := s.client.Get(ctx, s.key(role)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("redis get credential: %w", err)
	}
	return token, nil
}

func (s *CredentialStore) Set(role domain.Role, token string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Set(ctx, s.key(role), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(role domain.Role) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Del(ctx, s.key(role)).Err(); err != nil {
		return fmt.Errorf("redis clear credential: %w", err)
	}
	return nil
}

// Ping reports whether the backing instance is reachable.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CredentialStore) key(role domain.Role) string {
	return fmt.Sprintf("%s:%s", s.prefix, domain.CredentialKey(role))
}

func (s *CredentialStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
