package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// Status prints the current user and session expiry.
func (a *App) Status(ctx context.Context) error {
	u := a.manager.CurrentUser()
	s := a.manager.CurrentSession()
	if u == nil || s == nil {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("User:    %s (%s)\n", u.DisplayName, u.Email)
	if u.Bio != "" {
		fmt.Printf("Bio:     %s\n", u.Bio)
	}
	fmt.Printf("Expires: %s (in %s)\n",
		time.Unix(s.ExpiresAt, 0).Format(time.RFC3339),
		s.ExpiresIn(time.Now()).Round(time.Second))

	enabled, err := a.manager.BiometricsEnabled(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Biometric login: %v\n", enabled)
	return nil
}

// Profile prompts for new display name and bio values and applies them as a
// partial update. Empty answers leave the corresponding field unchanged.
func (a *App) Profile(ctx context.Context) error {
	patch := models.UserPatch{}

	displayName, err := getSimpleText(a.reader, "New display name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if displayName != "" {
		patch.DisplayName = &displayName
	}

	bio, err := getSimpleText(a.reader, "New bio (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if bio != "" {
		patch.Bio = &bio
	}

	if err := a.manager.UpdateUserProfile(ctx, patch); err != nil {
		log.Printf("Profile update unsuccessfull: %s", err.Error())
		return err
	}

	fmt.Println("Profile updated")
	return nil
}

// Refresh forces an immediate token refresh instead of waiting for the
// scheduler.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.manager.RefreshSession(ctx); err != nil {
		log.Printf("Refresh unsuccessfull: %s", err.Error())
		return err
	}
	fmt.Println("Session refreshed")
	return nil
}

// BioOn enables biometric login for the current account.
func (a *App) BioOn(ctx context.Context) error {
	if err := a.manager.EnableBiometrics(ctx); err != nil {
		log.Printf("Could not enable biometric login: %s", err.Error())
		return err
	}
	fmt.Println("Biometric login enabled")
	return nil
}

// BioOff disables biometric login and deletes the saved credentials.
func (a *App) BioOff(ctx context.Context) error {
	if err := a.manager.DisableBiometrics(ctx); err != nil {
		log.Printf("Could not disable biometric login: %s", err.Error())
		return err
	}
	fmt.Println("Biometric login disabled")
	return nil
}
