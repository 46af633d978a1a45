// Package metrics defines and registers the Prometheus metrics of the access
// layer. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default registry at package init through
// promauto; importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access"

// ── Dispatcher metrics ────────────────────────────────────────────────────────

// RequestsTotal counts dispatched calls by outcome.
// Labels:
//   - role: "staff", "end_user" or "none"
//   - method: HTTP method
//   - outcome: "success", "network", "http", "auth" or "transfer"
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of dispatched requests, by role, method and outcome.",
	},
	[]string{"role", "method", "outcome"},
)

// RequestDuration measures wall time from send to classified outcome.
// Label:
//   - role: the role the call was made under
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of dispatched requests until the outcome is classified.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// ── Auth-failure policy metrics ───────────────────────────────────────────────

// CredentialsClearedTotal counts credential slots cleared after an auth failure.
// Labels:
//   - role: the cleared role
//   - status: "401" or "403"
var CredentialsClearedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credentials_cleared_total",
		Help:      "Total number of credential slots cleared after an authentication failure.",
	},
	[]string{"role", "status"},
)

// RedirectsScheduledTotal counts redirects to a login entry point.
// Label:
//   - role: the role being sent to its login entry point
var RedirectsScheduledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redirects_scheduled_total",
		Help:      "Total number of login redirects scheduled by the auth-failure policy.",
	},
	[]string{"role"},
)
