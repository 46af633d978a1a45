package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
	"github.com/rentora/access-layer/internal/metrics"
)

// DefaultRedirectDelay leaves pending UI feedback time to render before the
// browsing context moves to a login entry point.
const DefaultRedirectDelay = 1500 * time.Millisecond

// expiredTokenMessage is what the backend says when a bearer token is invalid
// or expired.
const expiredTokenMessage = "invalid or expired token"

// AuthState is the per-role authentication state.
type AuthState string

const (
	StateAuthenticated   AuthState = "authenticated"
	StateUnauthenticated AuthState = "unauthenticated"
)

// AuthPolicy reacts to auth failures: it clears the failing role's credential
// slot and schedules a redirect to that role's login entry point.
type AuthPolicy struct {
	store      ports.CredentialStore
	navigator  ports.Navigator
	scheduler  ports.Scheduler
	loginPaths map[domain.Role]string
	delay      time.Duration
	log        zerolog.Logger
}

// AuthPolicyConfig holds the login entry point of each role and the redirect
// delay. A zero delay falls back to DefaultRedirectDelay.
type AuthPolicyConfig struct {
	LoginPaths map[domain.Role]string
	Delay      time.Duration
}

func NewAuthPolicy(
	store ports.CredentialStore,
	navigator ports.Navigator,
	scheduler ports.Scheduler,
	cfg AuthPolicyConfig,
	log zerolog.Logger,
) *AuthPolicy {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultRedirectDelay
	}
	paths := make(map[domain.Role]string, len(cfg.LoginPaths))
	for r, p := range cfg.LoginPaths {
		paths[r] = p
	}
	return &AuthPolicy{
		store:      store,
		navigator:  navigator,
		scheduler:  scheduler,
		loginPaths: paths,
		delay:      cfg.Delay,
		log:        log,
	}
}

// State reports whether role currently holds a credential.
func (p *AuthPolicy) State(role domain.Role) AuthState {
	if !role.Valid() {
		return StateUnauthenticated
	}
	token, err := p.store.Get(role)
	if err != nil || token == "" {
		return StateUnauthenticated
	}
	return StateAuthenticated
}

// Observe inspects a dispatcher error for role and always returns it
// unchanged. On an auth failure it clears role's slot and schedules exactly
// one redirect to role's login entry point.
func (p *AuthPolicy) Observe(role domain.Role, err error) error {
	var f *domain.Failure
	if !errors.As(err, &f) || f.Kind != domain.KindAuth || !role.Valid() {
		return err
	}

	// The backend message only tells whether a specific token was named;
	// the clear is always scoped to the role the call was made under.
	namesToken := strings.Contains(strings.ToLower(f.Message), expiredTokenMessage)

	if clearErr := p.store.Clear(role); clearErr != nil {
		p.log.Error().Err(clearErr).Str("role", role.String()).Msg("failed to clear credential after auth failure")
	} else {
		metrics.CredentialsClearedTotal.WithLabelValues(role.String(), strconv.Itoa(f.Status)).Inc()
	}

	p.log.Warn().
		Str("role", role.String()).
		Int("status", f.Status).
		Bool("token_rejected", namesToken).
		Msg("credential cleared after authentication failure")

	p.scheduleRedirect(role)
	return err
}

func (p *AuthPolicy) scheduleRedirect(role domain.Role) {
	target, ok := p.loginPaths[role]
	if !ok || target == "" {
		p.log.Warn().Str("role", role.String()).Msg("no login entry point configured, redirect skipped")
		return
	}

	p.scheduler.AfterFunc(p.delay, func() {
		p.navigator.Redirect(role, target)
	})
	metrics.RedirectsScheduledTotal.WithLabelValues(role.String()).Inc()

	p.log.Debug().Str("role", role.String()).Str("target", target).Dur("delay", p.delay).Msg("login redirect scheduled")
}
