package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

const biometricPromptMessage = "Confirm your identity to log in"

// EnableBiometrics captures the current refresh token (never the password)
// together with the user's email and id, and persists it alongside an
// enabled preference record. Requires an authenticated session.
func (m *Manager) EnableBiometrics(ctx context.Context) error {
	m.mu.Lock()
	sess, user := m.session, m.user
	m.mu.Unlock()

	if sess == nil || user == nil {
		return fmt.Errorf("enable biometrics: %w", common.ErrNotAuthenticated)
	}
	if sess.RefreshToken == "" {
		return fmt.Errorf("enable biometrics: %w", common.ErrNoRefreshToken)
	}

	now := time.Now()
	creds := &models.SavedCredentials{
		Email:        user.Email,
		UserID:       user.ID,
		RefreshToken: sess.RefreshToken,
		InstallID:    uuid.NewString(),
		CreatedAt:    now,
	}
	pref := &models.BiometricPreference{Enabled: true, LastUpdatedAt: now}

	if err := m.store.SaveBiometricCredentials(ctx, creds, pref); err != nil {
		return fmt.Errorf("save biometric credentials: %w", err)
	}
	m.logger.Info(ctx, "biometric login enabled", "user", user.ID)
	return nil
}

// DisableBiometrics deletes the saved credentials and the preference record
// unconditionally.
func (m *Manager) DisableBiometrics(ctx context.Context) error {
	if err := m.store.ClearBiometricCredentials(ctx); err != nil {
		return fmt.Errorf("clear biometric credentials: %w", err)
	}
	m.logger.Info(ctx, "biometric login disabled")
	return nil
}

// BiometricsEnabled reports the persisted preference.
func (m *Manager) BiometricsEnabled(ctx context.Context) (bool, error) {
	pref, err := m.store.GetBiometricPreference(ctx)
	if err != nil {
		return false, err
	}
	return pref != nil && pref.Enabled, nil
}

// AuthenticateWithBiometrics runs the platform prompt. It performs no
// session mutation; callers combine it with LoginWithSavedCredentials.
// Returns common.ErrBiometricsUnavailable when the device has no usable
// biometry, so the caller can hide the feature.
func (m *Manager) AuthenticateWithBiometrics(ctx context.Context) error {
	caps, err := m.biometric.Capabilities(ctx)
	if err != nil {
		return err
	}
	if !caps.Available() {
		return common.ErrBiometricsUnavailable
	}
	return m.biometric.Prompt(ctx, biometricPromptMessage)
}

// LoginWithSavedCredentials exchanges the saved refresh token for a fresh
// session, installing it exactly as a normal login would. It never prompts
// for a password. Credential records in an obsolete shape are purged and
// reported; the user has to log in again and re-enable biometrics.
func (m *Manager) LoginWithSavedCredentials(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	creds, err := m.store.GetSavedCredentials(ctx)
	if err != nil {
		if errors.Is(err, common.ErrLegacyCredentials) {
			m.logger.Warn(ctx, "purging legacy saved credentials")
			if clearErr := m.store.ClearBiometricCredentials(ctx); clearErr != nil {
				m.logger.Error(ctx, "failed to purge legacy credentials", "error", clearErr)
			}
			return fmt.Errorf("saved credentials are out of date, log in with your password and re-enable biometric login: %w", err)
		}
		return err
	}
	if creds == nil {
		return common.ErrNoSavedCredentials
	}

	res, err := m.identity.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("biometric login failed, log in with your password and re-enable biometric login: %w", err)
	}

	if err := m.store.SaveAuth(ctx, res.Session, res.User); err != nil {
		return err
	}
	m.install(res.Session, res.User)
	m.scheduler.Arm(res.Session)
	m.logger.Info(ctx, "logged in with saved credentials", "user", res.User.ID)
	return nil
}
