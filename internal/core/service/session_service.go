package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
	"github.com/rentora/access-layer/internal/pkg/validate"
)

// SessionService manages the credential slot lifecycle: sign-in creates it,
// sign-out deletes it.
type SessionService struct {
	client     *APIClient
	store      ports.CredentialStore
	loginPaths map[domain.Role]string
	now        func() time.Time
	log        zerolog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService posts sign-in requests to the backend endpoints in
// loginEndpoints, keyed by role.
func NewSessionService(client *APIClient, store ports.CredentialStore, loginEndpoints map[domain.Role]string, log zerolog.Logger) *SessionService {
	paths := make(map[domain.Role]string, len(loginEndpoints))
	for r, p := range loginEndpoints {
		paths[r] = p
	}
	return &SessionService{client: client, store: store, loginPaths: paths, now: time.Now, log: log}
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

// SignIn authenticates role against its login endpoint and stores the
// returned token in that role's slot only.
func (s *SessionService) SignIn(ctx context.Context, role domain.Role, in domain.SignInInput) (*domain.SessionStatus, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("sign in: %w: %q", domain.ErrUnknownRole, role)
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	path, ok := s.loginPaths[role]
	if !ok {
		return nil, fmt.Errorf("sign in: no login endpoint for role %s", role)
	}

	raw, err := s.client.Login(ctx, path, domain.JSON(in))
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	resp, err := Decode[loginResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("sign in: decode response: %w", err)
	}
	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return nil, fmt.Errorf("sign in: %w", domain.ErrNoToken)
	}

	if err := s.store.Set(role, token); err != nil {
		return nil, fmt.Errorf("sign in: store credential: %w", err)
	}
	s.log.Info().Str("role", role.String()).Msg("signed in")

	return s.describe(role, token), nil
}

// SignOut clears role's slot.
func (s *SessionService) SignOut(role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("sign out: %w: %q", domain.ErrUnknownRole, role)
	}
	if err := s.store.Clear(role); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.log.Info().Str("role", role.String()).Msg("signed out")
	return nil
}

// Status describes role's slot. A JWT credential is decoded without
// verification to report its subject and expiry; opaque tokens report
// presence only.
func (s *SessionService) Status(role domain.Role) (*domain.SessionStatus, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("status: %w: %q", domain.ErrUnknownRole, role)
	}
	token, err := s.store.Get(role)
	if errors.Is(err, domain.ErrNoCredential) {
		return &domain.SessionStatus{Role: role}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return s.describe(role, token), nil
}

func (s *SessionService) describe(role domain.Role, token string) *domain.SessionStatus {
	st := &domain.SessionStatus{Role: role, Authenticated: token != ""}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return st
	}
	st.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		st.ExpiresAt = claims.ExpiresAt.Time.UTC()
		st.Expired = !s.now().Before(claims.ExpiresAt.Time)
	}
	return st
}
