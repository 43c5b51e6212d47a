// Package models defines the data records owned by the session subsystem:
// the token-bearing Session, the User profile, and the biometric credential
// records persisted on the device.
package models

import "time"

// Session holds the credentials returned by the identity provider.
// ExpiresAt is absolute epoch seconds; it is always interpreted against
// wall-clock time at the moment of each check. Sessions are replaced
// wholesale on refresh, never mutated field by field.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// ExpiresIn reports how long the session remains valid from now.
// Negative results mean the session is already expired.
func (s *Session) ExpiresIn(now time.Time) time.Duration {
	return time.Unix(s.ExpiresAt, 0).Sub(now)
}

// Expired reports whether the session can no longer authorize calls.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresIn(now) <= 0
}
