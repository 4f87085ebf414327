package auth

import "errors"

var (
	// ErrInvalidCredentials reports missing or contradictory local input.
	// It is always raised before any network call is made.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProfile reports a profile that is nil or not among the
	// profiles known to the session.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrNotLoggedIn reports an operation that requires an authenticated
	// session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrProfileSelected reports an attempt to bind a profile when one is
	// already bound. The legacy server allows selection once per token.
	ErrProfileSelected = errors.New("profile already selected")

	// ErrClientTokenMismatch reports a response echoing a client token
	// different from the one sent, indicating request/response
	// desynchronization from a misbehaving or malicious server.
	ErrClientTokenMismatch = errors.New("server responded with incorrect client token")

	// ErrInvalidResponse reports a response that was absent or failed a
	// local integrity check.
	ErrInvalidResponse = errors.New("server returned invalid response")

	// ErrUnsupported reports an operation with no implemented protocol,
	// such as password-based Microsoft token generation.
	ErrUnsupported = errors.New("unsupported operation")
)
