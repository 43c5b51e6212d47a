// Package identity defines the narrow interface through which the remote
// identity provider is consumed, plus its REST implementation. The
// provider's login/signup/refresh business logic is out of scope; only the
// result contracts matter here.
package identity

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// Result is the outcome of a successful login or refresh: a user profile
// and a freshly minted session.
type Result struct {
	User    *models.User
	Session *models.Session
}

// Client is the identity provider as seen by the session subsystem.
//
// Contract:
//   - Login: authenticate with email/password; failures map to
//     ErrInvalidCredentials or ErrUnavailable.
//   - Signup: create an account; does not authenticate the caller
//     (email verification happens out-of-band).
//   - Logout: best-effort server-side session invalidation.
//   - Refresh: exchange a refresh token for a new Result; the token rotates
//     on every success. ErrTokenReplayed is distinct from ErrTokenInvalid.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Login(ctx context.Context, email, password string) (*Result, error)
	Signup(ctx context.Context, email, password, displayName string) error
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Result, error)
}
