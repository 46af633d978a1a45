// Package navigation implements ports.Navigator for contexts without a
// browser: a terminal and an in-memory recorder.
package navigation

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
)

// Terminal tells the operator where to sign in again.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	log zerolog.Logger
}

var _ ports.Navigator = (*Terminal)(nil)

func NewTerminal(out io.Writer, log zerolog.Logger) *Terminal {
	return &Terminal{out: out, log: log}
}

func (t *Terminal) Redirect(role domain.Role, target string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Info().Str("role", role.String()).Str("target", target).Msg("redirecting to login")
	fmt.Fprintf(t.out, "%s session ended, sign in again at %s\n", role, target)
}

// Redirect is one recorded navigation.
type Redirect struct {
	Role   domain.Role
	Target string
}

// Recorder keeps every redirect it receives.
type Recorder struct {
	mu        sync.Mutex
	redirects []Redirect
}

var _ ports.Navigator = (*Recorder)(nil)

func (r *Recorder) Redirect(role domain.Role, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, Redirect{Role: role, Target: target})
}

// Redirects returns a copy of the recorded navigations in arrival order.
func (r *Recorder) Redirects() []Redirect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Redirect, len(r.redirects))
	copy(out, r.redirects)
	return out
}
