package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, a password and an optional display
// name and attempts to create a new account with the identity provider.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	displayName, err := getSimpleText(a.reader, "Enter display name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.manager.Signup(ctx, email, string(password), displayName); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			log.Printf("An account with this email already exists")
			return err
		}
		log.Printf("Registration unsuccessfull: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate. On
// success the session manager holds the new session and keeps it fresh in
// the background. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.manager.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Printf("Invalid email or password")
		} else {
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successfull")
	return nil
}

// BioLogin authenticates using the saved biometric credentials, going
// through the biometric prompt first.
func (a *App) BioLogin(ctx context.Context) error {
	if err := a.manager.AuthenticateWithBiometrics(ctx); err != nil {
		switch {
		case errors.Is(err, common.ErrBiometricsUnavailable):
			log.Printf("Biometric login is not available on this device")
		case errors.Is(err, common.ErrPromptDismissed):
			log.Printf("Cancelled")
		default:
			log.Printf("Biometric check unsuccessfull: %s", err.Error())
		}
		return err
	}

	if err := a.manager.LoginWithSavedCredentials(ctx); err != nil {
		if errors.Is(err, common.ErrNoSavedCredentials) {
			log.Printf("Biometric login is not set up; use 'bio on' after logging in")
		} else {
			log.Printf("Biometric login unsuccessfull: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successfull")
	return nil
}

// Logout signs out locally and best-effort on the server. Saved biometric
// credentials survive a logout.
func (a *App) Logout(ctx context.Context) error {
	a.manager.Logout(ctx)
	log.Printf("Logged out")
	return nil
}
