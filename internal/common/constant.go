// Package common contains shared constants and sentinel errors used across
// SessionKeeper components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound identity-provider requests.
const AuthorizationHeaderName = "Authorization"
