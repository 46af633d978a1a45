package domain

// MetadataQuery identifies the page whose display metadata is requested.
type MetadataQuery struct {
	Type         string `json:"type" validate:"required"`
	Slug         string `json:"slug" validate:"required"`
	CanonicalURL string `json:"url" validate:"omitempty,url"`
}

// Metadata is the display metadata returned by the SEO resolver.
type Metadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Keywords      []string `json:"keywords"`
	OGTitle       string   `json:"ogTitle,omitempty"`
	OGDescription string   `json:"ogDescription,omitempty"`
	OGImage       string   `json:"ogImage,omitempty"`
	CanonicalURL  string   `json:"canonicalUrl,omitempty"`
}
