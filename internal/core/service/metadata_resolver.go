package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/pkg/validate"
)

// DefaultMetadataPath is the backend route serving display metadata.
const DefaultMetadataPath = "/seo"

// MetadataResolver fetches display metadata as an unauthenticated request.
type MetadataResolver struct {
	dispatcher *Dispatcher
	path       string
}

func NewMetadataResolver(dispatcher *Dispatcher, path string) *MetadataResolver {
	if path == "" {
		path = DefaultMetadataPath
	}
	return &MetadataResolver{dispatcher: dispatcher, path: path}
}

// Resolve returns the metadata for q. Failures propagate unchanged.
func (r *MetadataResolver) Resolve(ctx context.Context, q domain.MetadataQuery) (*domain.Metadata, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("resolve metadata: %w", err)
	}

	params := url.Values{}
	params.Set("type", q.Type)
	params.Set("slug", q.Slug)
	if q.CanonicalURL != "" {
		params.Set("url", q.CanonicalURL)
	}

	raw, err := r.dispatcher.Dispatch(ctx, domain.RequestDescriptor{
		Role:   domain.RoleNone,
		Method: http.MethodGet,
		Path:   r.path + "?" + params.Encode(),
	})
	if err != nil {
		return nil, err
	}

	md, err := Decode[domain.Metadata](raw)
	if err != nil {
		return nil, fmt.Errorf("resolve metadata: decode: %w", err)
	}
	if md.CanonicalURL == "" {
		md.CanonicalURL = q.CanonicalURL
	}
	return &md, nil
}
