package ports

import "github.com/rentora/access-layer/internal/core/domain"

// Navigator moves the caller's browsing context to another location.
type Navigator interface {
	Redirect(role domain.Role, target string)
}
