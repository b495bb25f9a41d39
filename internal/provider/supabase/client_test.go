package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *session.MemoryStore) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	store := session.NewMemoryStore()
	return NewClient(ts.URL, "anon-key", ts.Client(), store, nil), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSignUpReturnsIdentityFromSessionShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		var in credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "a@b.com", in.Email)
		writeJSON(w, http.StatusOK, `{"access_token":"t","user":{"id":"uid-1","email":"a@b.com"}}`)
	})

	id, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UserID)
	assert.Equal(t, "a@b.com", id.Email)
	assert.Equal(t, "t", id.AccessToken)
}

func TestSignUpReturnsIdentityFromBareUserShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"uid-2","email":"a@b.com","confirmation_sent_at":"2026-01-01T00:00:00Z"}`)
	})

	id, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", id.UserID)
	assert.Empty(t, id.AccessToken)
}

func TestSignUpWithEmptyIdentitiesIsDuplicate(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"3f1c-fake","email":"a@b.com","identities":[],"confirmation_sent_at":"2026-01-01T00:00:00Z"}`)
	})

	id, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
	require.Error(t, err)
	assert.Empty(t, id.UserID)
	assert.Equal(t, provider.KindDuplicateAccount, provider.KindOf(err))
	assert.Equal(t, "User already registered", provider.MessageOf(err))
}

func TestSignUpWithIdentitiesIsNewAccount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"uid-3","email":"a@b.com","identities":[{"identity_id":"i1","provider":"email"}]}`)
	})

	id, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
	require.NoError(t, err)
	assert.Equal(t, "uid-3", id.UserID)
}

func TestSignUpErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    provider.Kind
		message string
	}{
		{"duplicate", 422, `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`, provider.KindDuplicateAccount, "User already registered"},
		{"weak", 422, `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`, provider.KindWeakPassword, "Password should be at least 6 characters."},
		{"legacy duplicate", 400, `{"msg":"User already registered"}`, provider.KindDuplicateAccount, "User already registered"},
		{"rate limited", 429, `{"code":429,"error_code":"over_email_send_rate_limit","msg":"email rate limit exceeded"}`, provider.KindRejected, "email rate limit exceeded"},
		{"validation failed", 400, `{"code":400,"error_code":"validation_failed","msg":"Unable to validate email address: invalid format"}`, provider.KindRejected, "Unable to validate email address: invalid format"},
		{"signups disabled", 422, `{"code":422,"error_code":"signup_disabled","msg":"Signups not allowed for this instance"}`, provider.KindRejected, "Signups not allowed for this instance"},
		{"legacy unknown", 400, `{"msg":"Email address is invalid"}`, provider.KindRejected, "Email address is invalid"},
		{"no message", 400, `{"error_code":"bad_json"}`, provider.KindTransport, provider.TransportMessage},
		{"server error", 503, `upstream unavailable`, provider.KindTransport, provider.TransportMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
			require.Error(t, err)
			assert.Equal(t, tc.kind, provider.KindOf(err))
			assert.Equal(t, tc.message, provider.MessageOf(err))
		})
	}
}

func TestSignUpUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c := NewClient(base, "k", nil, session.NewMemoryStore(), nil)
	_, err := c.SignUp(context.Background(), "a@b.com", "Abcdef12")
	assert.Equal(t, provider.KindTransport, provider.KindOf(err))
}

func TestSignInPersistsSession(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		writeJSON(w, http.StatusOK, `{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"uid-1","email":"a@b.com"}}`)
	})
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := session.WithKey(context.Background(), "cookie-1")
	s, err := c.SignIn(ctx, "a@b.com", "Abcdef12")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "uid-1", s.UserID)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	got, ok, err := store.Load(context.Background(), "cookie-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rt", got.RefreshToken)
}

func TestSignInInvalidCredentials(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})

	ctx := session.WithKey(context.Background(), "cookie-1")
	_, err := c.SignIn(ctx, "a@b.com", "nope")
	assert.Equal(t, provider.KindInvalidCredentials, provider.KindOf(err))
	assert.Equal(t, "Invalid login credentials", provider.MessageOf(err))

	_, ok, _ := store.Load(context.Background(), "cookie-1")
	assert.False(t, ok)
}

func TestCurrentSessionWithoutKey(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("current session must not call the provider")
	})
	_, ok := c.CurrentSession(context.Background())
	assert.False(t, ok)
}
