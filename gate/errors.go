package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	// ErrUnauthenticated means there is no subject to check.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the subject's profile lacks the permission.
	ErrForbidden = errors.New("forbidden")
)
