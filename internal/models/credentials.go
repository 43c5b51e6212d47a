package models

import "time"

// SavedCredentials links a user's biometric preference to a long-lived
// refresh token captured at enablement time. It never contains a password.
// InstallID identifies the device installation that captured the record.
type SavedCredentials struct {
	Email        string    `json:"email"`
	UserID       string    `json:"userId"`
	RefreshToken string    `json:"refreshToken"`
	InstallID    string    `json:"installId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BiometricPreference records whether biometric login is enabled. It is
// created and destroyed in lockstep with SavedCredentials.
type BiometricPreference struct {
	Enabled       bool      `json:"enabled"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
