package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// HTTPClient talks to the identity provider's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the provider at baseURL (no trailing
// slash). timeout bounds each request end to end.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Wire shapes. The provider reports errors as {"error":{"code","message"}}
// and successes as {"user":{...},"session":{...}}.

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiSession struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type authResponse struct {
	User    *models.User `json:"user"`
	Session *apiSession  `json:"session"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Result, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.post(ctx, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return c.toResult(&resp)
}

func (c *HTTPClient) Signup(ctx context.Context, email, password, displayName string) error {
	body := map[string]string{"email": email, "password": password}
	if displayName != "" {
		body["displayName"] = displayName
	}
	return c.post(ctx, "/auth/signup", "", body, nil)
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	return c.post(ctx, "/auth/logout", accessToken, map[string]string{}, nil)
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp authResponse
	if err := c.post(ctx, "/auth/refresh", "", body, &resp); err != nil {
		return nil, err
	}
	return c.toResult(&resp)
}

func (c *HTTPClient) post(ctx context.Context, path, accessToken string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError translates the provider's error codes into sentinels so callers
// can branch with errors.Is. Unknown codes keep the server message.
func (c *HTTPClient) mapError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ae apiError
	if err := json.Unmarshal(data, &ae); err == nil {
		switch ae.Error.Code {
		case "invalid_credentials":
			return ErrInvalidCredentials
		case "email_taken":
			return ErrEmailTaken
		case "refresh_token_reused":
			return ErrTokenReplayed
		case "invalid_token", "token_expired":
			return ErrTokenInvalid
		}
		if ae.Error.Message != "" {
			return fmt.Errorf("identity: %s: %s", ae.Error.Code, ae.Error.Message)
		}
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return fmt.Errorf("identity: unexpected status %d", resp.StatusCode)
}

func (c *HTTPClient) toResult(resp *authResponse) (*Result, error) {
	if resp.Session == nil || resp.User == nil {
		return nil, fmt.Errorf("identity: incomplete auth response")
	}
	sess := &models.Session{
		AccessToken:  resp.Session.AccessToken,
		RefreshToken: resp.Session.RefreshToken,
		ExpiresAt:    resp.Session.ExpiresAt,
	}
	if sess.ExpiresAt == 0 {
		// Some deployments omit expiresAt; fall back to the JWT exp claim.
		exp, err := accessTokenExpiry(sess.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("identity: session has no expiry: %w", err)
		}
		sess.ExpiresAt = exp
	}
	return &Result{User: resp.User, Session: sess}, nil
}

// accessTokenExpiry reads the exp claim from the access token without
// verifying the signature. The client has no key material to verify with;
// the value is only used for refresh scheduling, never for authorization.
func accessTokenExpiry(accessToken string) (int64, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return 0, err
	}
	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("no exp claim")
	}
	return claims.ExpiresAt.Unix(), nil
}
