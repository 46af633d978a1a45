package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/core/ports"
)

// APIClient is the role-aware caller surface over a Dispatcher.
type APIClient struct {
	dispatcher *Dispatcher
}

var _ ports.APIClient = (*APIClient)(nil)

func NewAPIClient(dispatcher *Dispatcher) *APIClient {
	return &APIClient{dispatcher: dispatcher}
}

func (c *APIClient) Get(ctx context.Context, role domain.Role, path string) (json.RawMessage, error) {
	return c.dispatcher.Dispatch(ctx, domain.RequestDescriptor{Role: role, Method: http.MethodGet, Path: path})
}

func (c *APIClient) Create(ctx context.Context, role domain.Role, path string, payload domain.Payload) (json.RawMessage, error) {
	return c.dispatcher.Dispatch(ctx, domain.RequestDescriptor{Role: role, Method: http.MethodPost, Path: path, Payload: payload})
}

func (c *APIClient) Replace(ctx context.Context, role domain.Role, path string, payload domain.Payload) (json.RawMessage, error) {
	return c.dispatcher.Dispatch(ctx, domain.RequestDescriptor{Role: role, Method: http.MethodPut, Path: path, Payload: payload})
}

func (c *APIClient) Delete(ctx context.Context, role domain.Role, path string) (json.RawMessage, error) {
	return c.dispatcher.Dispatch(ctx, domain.RequestDescriptor{Role: role, Method: http.MethodDelete, Path: path})
}

// Download fetches a binary artifact such as an exported spreadsheet.
func (c *APIClient) Download(ctx context.Context, role domain.Role, path string) ([]byte, error) {
	return c.dispatcher.Download(ctx, domain.RequestDescriptor{Role: role, Method: http.MethodGet, Path: path})
}

func (c *APIClient) Login(ctx context.Context, path string, payload domain.Payload) (json.RawMessage, error) {
	return c.dispatcher.Login(ctx, path, payload)
}

// As returns a scope that pins role for every call.
func (c *APIClient) As(role domain.Role) *RoleScope {
	return &RoleScope{client: c, role: role}
}

// RoleScope is an APIClient that remembers its role.
type RoleScope struct {
	client *APIClient
	role   domain.Role
}

// Role returns the pinned role.
func (s *RoleScope) Role() domain.Role { return s.role }

func (s *RoleScope) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return s.client.Get(ctx, s.role, path)
}

func (s *RoleScope) Create(ctx context.Context, path string, payload domain.Payload) (json.RawMessage, error) {
	return s.client.Create(ctx, s.role, path, payload)
}

func (s *RoleScope) Replace(ctx context.Context, path string, payload domain.Payload) (json.RawMessage, error) {
	return s.client.Replace(ctx, s.role, path, payload)
}

func (s *RoleScope) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return s.client.Delete(ctx, s.role, path)
}

func (s *RoleScope) Download(ctx context.Context, path string) ([]byte, error) {
	return s.client.Download(ctx, s.role, path)
}

// Decode unmarshals a raw success body into T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var target T
	if len(raw) == 0 {
		return target, nil
	}
	err := json.Unmarshal(raw, &target)
	return target, err
}
