package domain

import (
	"fmt"
	"net/http"
)

// FailureKind classifies how a dispatched call failed.
type FailureKind string

const (
	KindNetwork  FailureKind = "network"
	KindHTTP     FailureKind = "http"
	KindAuth     FailureKind = "auth"
	KindTransfer FailureKind = "transfer"
)

// DownloadFailedMessage is the only message a binary transfer failure carries.
const DownloadFailedMessage = "File download failed"

// Failure is the classified error returned by the dispatcher.
// Status is zero when no response was received.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
	Role    Role
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the kind sentinels (ErrNetwork, ErrHTTP, ErrAuth, ErrTransfer).
// An auth failure is also an http failure.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return f.Kind == KindNetwork
	case ErrHTTP:
		return f.Kind == KindHTTP || f.Kind == KindAuth
	case ErrAuth:
		return f.Kind == KindAuth
	case ErrTransfer:
		return f.Kind == KindTransfer
	}
	return false
}

// IsAuthStatus reports whether a status code signals authentication failure.
func IsAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// NewNetworkFailure wraps a transport error (no response received).
func NewNetworkFailure(role Role, err error) *Failure {
	return &Failure{Kind: KindNetwork, Message: err.Error(), Role: role, Err: err}
}

// NewHTTPFailure classifies a non-success response. backendMsg may be empty,
// in which case a generic message naming the status is used.
func NewHTTPFailure(role Role, status int, backendMsg string) *Failure {
	if backendMsg == "" {
		backendMsg = fmt.Sprintf("request failed with status code %d", status)
	}
	kind := KindHTTP
	if IsAuthStatus(status) {
		kind = KindAuth
	}
	return &Failure{
		Kind:    kind,
		Status:  status,
		Message: fmt.Sprintf("API error: %d - %s", status, backendMsg),
		Role:    role,
	}
}

// NewTransferFailure is the generic binary download failure. Status detail is
// never carried.
func NewTransferFailure(role Role) *Failure {
	return &Failure{Kind: KindTransfer, Message: DownloadFailedMessage, Role: role}
}

// RawResponseError is returned by the unauthenticated login verb for a
// non-success response. It carries the response untouched.
type RawResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *RawResponseError) Error() string {
	return fmt.Sprintf("login request failed with status code %d", e.StatusCode)
}
