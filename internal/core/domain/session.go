package domain

import "time"

// SignInInput is the body posted to a role's login endpoint.
type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionStatus describes a role's credential slot.
type SessionStatus struct {
	Role          Role      `json:"role"`
	Authenticated bool      `json:"authenticated"`
	Subject       string    `json:"subject,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Expired       bool      `json:"expired"`
}
