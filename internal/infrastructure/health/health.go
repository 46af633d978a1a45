// Package health reports whether the access layer can reach what it depends
// on: the backend, the credential store, and each role's session slot.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
)

const defaultTimeout = 3 * time.Second

// Pinger is implemented by credential stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
	Sessions     map[string]bool             `json:"sessions"`
}

// Healthy reports whether every dependency answered.
func (r Report) Healthy() bool {
	return r.Status == "ok"
}

type Checker struct {
	baseURL string
	client  ports.HTTPDoer
	store   ports.CredentialStore
	timeout time.Duration
}

func NewChecker(baseURL string, client ports.HTTPDoer, store ports.CredentialStore) *Checker {
	return &Checker{baseURL: baseURL, client: client, store: store, timeout: defaultTimeout}
}

// Check probes the backend and the credential store. Any HTTP response from
// the backend counts as reachable; only a transport failure marks it down.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	deps := make(map[string]DependencyStatus)
	healthy := true

	if err := c.pingBackend(ctx); err != nil {
		deps["backend"] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["backend"] = DependencyStatus{Status: "ok"}
	}

	if p, ok := c.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			deps["credentials"] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["credentials"] = DependencyStatus{Status: "ok"}
		}
	}

	sessions := make(map[string]bool, len(domain.Roles))
	for _, role := range domain.Roles {
		token, err := c.store.Get(role)
		switch {
		case err == nil:
			sessions[string(role)] = token != ""
		case errors.Is(err, domain.ErrNoCredential):
			sessions[string(role)] = false
		default:
			deps["credentials"] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
			sessions[string(role)] = false
			healthy = false
		}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	return Report{Status: status, Dependencies: deps, Sessions: sessions}
}

func (c *Checker) pingBackend(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
