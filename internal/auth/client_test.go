package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		BaseURL:    srv.URL,
		APIKey:     "anon-key",
		HTTPClient: srv.Client(),
	})
}

func TestSignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "dev@example.com", creds["email"])

		_ = json.NewEncoder(w).Encode(Session{
			AccessToken: "token-123",
			TokenType:   "bearer",
			User:        User{ID: "u-1", Email: "dev@example.com"},
		})
	})

	var notified *Session
	client.OnSessionChange(func(s *Session) { notified = s })

	session, err := client.SignIn(context.Background(), "dev@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "token-123", session.AccessToken)
	assert.Equal(t, "u-1", session.User.ID)
	require.NotNil(t, notified)
	assert.Equal(t, "token-123", notified.AccessToken)
}

func TestSignInBadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignIn(context.Background(), "dev@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestCurrentSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{ID: "u-1", Email: "dev@example.com"})
	})

	session, err := client.CurrentSession(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "token-123", session.AccessToken)
	assert.Equal(t, "dev@example.com", session.User.Email)
}

func TestCurrentSessionEmptyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a token")
	})

	_, err := client.CurrentSession(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSignOutNotifiesNilSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	called := false
	client.OnSessionChange(func(s *Session) {
		called = true
		assert.Nil(t, s)
	})

	require.NoError(t, client.SignOut(context.Background(), "token-123"))
	assert.True(t, called)
}

func TestOAuthURL(t *testing.T) {
	client := New(Options{BaseURL: "https://auth.example.com/"})

	got := client.OAuthURL("google", "https://studio.example.com/callback")
	assert.Equal(t, "https://auth.example.com/authorize?provider=google&redirect_to=https%3A%2F%2Fstudio.example.com%2Fcallback", got)

	bare := client.OAuthURL("github", "")
	assert.Equal(t, "https://auth.example.com/authorize?provider=github", bare)
}
