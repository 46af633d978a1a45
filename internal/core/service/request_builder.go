package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	mimeJSON            = "application/json"
)

// RequestBuilder turns a RequestDescriptor into a ready-to-send *http.Request.
type RequestBuilder struct {
	baseURL string
	store   ports.CredentialStore
}

// NewRequestBuilder returns a builder resolving relative paths against baseURL.
func NewRequestBuilder(baseURL string, store ports.CredentialStore) *RequestBuilder {
	return &RequestBuilder{baseURL: strings.TrimRight(baseURL, "/"), store: store}
}

// BaseURL is the endpoint relative paths are resolved against.
func (b *RequestBuilder) BaseURL() string { return b.baseURL }

// Build resolves the target URL, attaches the role's bearer credential when
// one is stored, and encodes the payload.
func (b *RequestBuilder) Build(ctx context.Context, d domain.RequestDescriptor) (*http.Request, error) {
	body, contentType, err := encodePayload(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, b.resolve(d.Path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	if d.Role == domain.RoleNone {
		return req, nil
	}

	token, err := b.store.Get(d.Role)
	switch {
	case errors.Is(err, domain.ErrNoCredential):
		// Left to the backend to reject.
	case err != nil:
		return nil, fmt.Errorf("build request: read %s credential: %w", d.Role, err)
	case token != "":
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	return req, nil
}

// resolve keeps absolute URLs verbatim and joins everything else onto the
// base endpoint.
func (b *RequestBuilder) resolve(path string) string {
	if isAbsoluteURL(path) {
		return path
	}
	if path == "" {
		return b.baseURL
	}
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

func isAbsoluteURL(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}

// encodePayload returns the body reader and the content type to declare.
// An empty content type means the header is left unset.
func encodePayload(p domain.Payload) (io.Reader, string, error) {
	switch v := p.(type) {
	case nil:
		return nil, "", nil
	case domain.JSONPayload:
		raw, err := json.Marshal(v.Value)
		if err != nil {
			return nil, "", fmt.Errorf("encode json payload: %w", err)
		}
		return bytes.NewReader(raw), mimeJSON, nil
	case *domain.JSONPayload:
		if v == nil {
			return nil, "", nil
		}
		return encodePayload(*v)
	case domain.BinaryPayload:
		return bytes.NewReader(v.Data), v.ContentType, nil
	case *domain.BinaryPayload:
		if v == nil {
			return nil, "", nil
		}
		return encodePayload(*v)
	default:
		return nil, "", fmt.Errorf("unsupported payload type %T", p)
	}
}
