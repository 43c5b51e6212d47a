// Package store implements the durable credential store: a small key-value
// layer holding the Session, the User profile, saved biometric credentials,
// and the biometric preference record. All operations are context-aware and
// atomic per record; paired records (Session+User, SavedCredentials+
// BiometricPreference) are written together.
package store

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// Record keys. One row per record; values are JSON (saved credentials are
// additionally sealed, see SQLiteStore).
const (
	keySession             = "session"
	keyUser                = "user"
	keySavedCredentials    = "saved_credentials"
	keyBiometricPreference = "biometric_preference"
)

// Store is the durable credential store consumed by the session manager.
//
// Absent records are reported as (nil, nil), not as errors. A saved
// credential record in an obsolete shape is reported as
// common.ErrLegacyCredentials so the caller can purge it.
type Store interface {
	// GetSession returns the persisted session, or nil if none.
	GetSession(ctx context.Context) (*models.Session, error)

	// GetUser returns the persisted user profile, or nil if none.
	GetUser(ctx context.Context) (*models.User, error)

	// SaveAuth persists the session and user together. Neither record is
	// ever observable without the other.
	SaveAuth(ctx context.Context, session *models.Session, user *models.User) error

	// ClearAuth removes the session and user together. Saved biometric
	// credentials are not touched.
	ClearAuth(ctx context.Context) error

	// GetSavedCredentials returns the saved biometric credentials, nil if
	// none, or common.ErrLegacyCredentials for obsolete shapes.
	GetSavedCredentials(ctx context.Context) (*models.SavedCredentials, error)

	// GetBiometricPreference returns the biometric preference, or nil.
	GetBiometricPreference(ctx context.Context) (*models.BiometricPreference, error)

	// SaveBiometricCredentials persists the credentials and the preference
	// in lockstep.
	SaveBiometricCredentials(ctx context.Context, creds *models.SavedCredentials, pref *models.BiometricPreference) error

	// ClearBiometricCredentials removes both records unconditionally.
	ClearBiometricCredentials(ctx context.Context) error
}

// savedCredentialsRecord is the persisted shape of SavedCredentials plus the
// password field legacy installs used to write. A non-empty password or a
// missing refresh token marks the record as legacy.
type savedCredentialsRecord struct {
	models.SavedCredentials
	Password string `json:"password,omitempty"`
}

func (r *savedCredentialsRecord) legacy() bool {
	return r.Password != "" || r.RefreshToken == ""
}
