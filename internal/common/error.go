// Package common defines shared constants and sentinel errors used across
// SessionKeeper components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Generic flow control.
	ErrorNotFound = errors.New("not found")
	ErrorInternal = errors.New("internal error")

	// Credential errors (bad email/password), surfaced verbatim.
	ErrorUnauthorized = errors.New("unauthorized")

	// Session lifecycle errors.
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Biometric errors.
	ErrBiometricsUnavailable = errors.New("biometric authentication unavailable")
	ErrPromptDismissed       = errors.New("biometric prompt dismissed")
	ErrNoSavedCredentials    = errors.New("no saved credentials")

	// ErrLegacyCredentials marks a saved-credential record in an obsolete
	// shape (plaintext or password-bearing). Such records are purged, not
	// surfaced as a user-facing failure.
	ErrLegacyCredentials = errors.New("legacy saved credentials")
)
