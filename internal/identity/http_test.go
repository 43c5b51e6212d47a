package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func authOK(t *testing.T, w http.ResponseWriter, expiresAt int64, accessToken string) {
	t.Helper()
	resp := map[string]any{
		"user": map[string]any{"id": "u1", "email": "a@example.com", "displayName": "A"},
		"session": map[string]any{
			"accessToken":  accessToken,
			"refreshToken": "rt-1",
			"expiresAt":    expiresAt,
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func authErr(t *testing.T, w http.ResponseWriter, status int, code string) {
	t.Helper()
	w.WriteHeader(status)
	resp := map[string]any{"error": map[string]any{"code": code, "message": code}}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestHTTPClient_Login_Success(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@example.com", body["email"])
		require.Equal(t, "pw", body["password"])
		authOK(t, w, expires, "at-1")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	res, err := c.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "u1", res.User.ID)
	require.Equal(t, "at-1", res.Session.AccessToken)
	require.Equal(t, "rt-1", res.Session.RefreshToken)
	require.Equal(t, expires, res.Session.ExpiresAt)
}

func TestHTTPClient_Login_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authErr(t, w, http.StatusUnauthorized, "invalid_credentials")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), "a@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHTTPClient_Refresh_ReplayedVsInvalid(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"refresh_token_reused", ErrTokenReplayed},
		{"invalid_token", ErrTokenInvalid},
		{"token_expired", ErrTokenInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/auth/refresh", r.URL.Path)
				authErr(t, w, http.StatusUnauthorized, tc.code)
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, 5*time.Second)
			_, err := c.Refresh(context.Background(), "rt-old")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHTTPClient_Refresh_ExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authOK(t, w, 0, signed) // provider omitted expiresAt
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	res, err := c.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), res.Session.ExpiresAt)
}

func TestHTTPClient_Logout_SendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, c.Logout(context.Background(), "at-1"))
	require.Equal(t, "Bearer at-1", got)
}

func TestHTTPClient_ServerDown_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Refresh(context.Background(), "rt-1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ServerError_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Refresh(context.Background(), "rt-1")
	require.ErrorIs(t, err, ErrUnavailable)
}
