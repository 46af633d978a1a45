package domain

import "errors"

var ErrNoCredential = errors.New("no credential stored for role")
var ErrUnknownRole = errors.New("unknown role")
var ErrNoToken = errors.New("login response carried no token")

// Kind sentinels. A *Failure matches the sentinel of its kind via errors.Is.
var (
	ErrNetwork  = errors.New("network failure")
	ErrHTTP     = errors.New("http failure")
	ErrAuth     = errors.New("authentication failure")
	ErrTransfer = errors.New("transfer failure")
)
