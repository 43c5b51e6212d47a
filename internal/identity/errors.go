package identity

import "errors"

// Sentinel errors distinguishing the provider's failure classes. The replay
// class (ErrTokenReplayed) is recoverable by the refresh coordinator; the
// others are fatal for the token chain or are surfaced verbatim.
var (
	// ErrUnavailable means the provider could not be reached at all.
	ErrUnavailable = errors.New("identity provider unavailable")

	// ErrInvalidCredentials covers bad email/password on login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned by signup for an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrTokenReplayed means the submitted refresh token was already used:
	// another caller rotated it first.
	ErrTokenReplayed = errors.New("refresh token already used")

	// ErrTokenInvalid covers invalid, malformed, or expired refresh tokens.
	ErrTokenInvalid = errors.New("refresh token invalid")
)
