package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
	"github.com/rentora/access-layer/internal/metrics"
)

// maxErrorBody caps how much of a failing response is read to find the
// backend message.
const maxErrorBody = 64 << 10

// Dispatcher executes built requests and classifies their outcome.
type Dispatcher struct {
	builder *RequestBuilder
	client  ports.HTTPDoer
	policy  *AuthPolicy
	log     zerolog.Logger
}

// NewDispatcher returns a Dispatcher. policy may be nil, in which case auth
// failures are classified but trigger no side effects.
func NewDispatcher(builder *RequestBuilder, client ports.HTTPDoer, policy *AuthPolicy, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{builder: builder, client: client, policy: policy, log: log}
}

// Dispatch sends desc and returns the response body exactly as received.
//
// Failures are *domain.Failure values: network when no response arrived,
// http for a non-success status, auth for 401/403. Auth failures are passed
// through the AuthPolicy before being returned.
func (d *Dispatcher) Dispatch(ctx context.Context, desc domain.RequestDescriptor) (json.RawMessage, error) {
	req, err := d.builder.Build(ctx, desc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := d.do(req, desc.Role)
	d.record(desc, start, err)

	if err != nil {
		d.log.Debug().Err(err).
			Str("role", desc.Role.String()).
			Str("method", req.Method).
			Str("url", req.URL.Redacted()).
			Msg("request failed")
		if d.policy != nil {
			return nil, d.policy.Observe(desc.Role, err)
		}
		return nil, err
	}
	return body, nil
}

func (d *Dispatcher) do(req *http.Request, role domain.Role) (json.RawMessage, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, domain.NewNetworkFailure(role, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewHTTPFailure(role, resp.StatusCode, backendMessage(raw))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkFailure(role, fmt.Errorf("read response body: %w", err))
	}
	return json.RawMessage(body), nil
}

// Login posts payload to path without a credential and returns the success
// body untouched. Errors are not normalized: transport errors come back as
// returned by the client, non-success responses as *domain.RawResponseError.
func (d *Dispatcher) Login(ctx context.Context, path string, payload domain.Payload) (json.RawMessage, error) {
	req, err := d.builder.Build(ctx, domain.RequestDescriptor{
		Role:    domain.RoleNone,
		Method:  http.MethodPost,
		Path:    path,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, &domain.RawResponseError{StatusCode: resp.StatusCode, Body: body}
	}
	return json.RawMessage(body), nil
}

func (d *Dispatcher) record(desc domain.RequestDescriptor, start time.Time, err error) {
	method := desc.Method
	if method == "" {
		method = http.MethodGet
	}
	metrics.RequestDuration.WithLabelValues(desc.Role.String()).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(desc.Role.String(), method, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var f *domain.Failure
	if errors.As(err, &f) {
		return string(f.Kind)
	}
	return "error"
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// backendMessage extracts the message a backend error body carries, if any.
func backendMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
