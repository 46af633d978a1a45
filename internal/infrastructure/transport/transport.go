// Package transport builds the HTTP client every outbound call goes through.
package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const HeaderRequestID = "X-Request-Id"

type Options struct {
	Timeout time.Duration
	// Tracing wraps the transport with otelhttp so spans are recorded against
	// the globally registered tracer provider.
	Tracing bool
	// Base overrides http.DefaultTransport.
	Base http.RoundTripper
}

// NewClient returns a client that tags every request with a request id.
func NewClient(opts Options) *http.Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = &requestIDTransport{next: base}
	if opts.Tracing {
		rt = otelhttp.NewTransport(rt)
	}
	return &http.Client{Transport: rt, Timeout: opts.Timeout}
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(HeaderRequestID, uuid.NewString())
	return t.next.RoundTrip(clone)
}
