package handlers

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/inventory-be/internal/auth"
	"github.com/hongminglow/inventory-be/internal/middleware"
	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/provider/local"
	"github.com/hongminglow/inventory-be/internal/provisioning"
	"github.com/hongminglow/inventory-be/internal/session"
	"github.com/hongminglow/inventory-be/internal/storage/memory"
)

// countingProvider records how often each provider operation runs.
type countingProvider struct {
	provider.Provider
	signUps atomic.Int32
	signIns atomic.Int32
}

func (c *countingProvider) SignUp(ctx context.Context, email, password string) (models.AccountIdentity, error) {
	c.signUps.Add(1)
	return c.Provider.SignUp(ctx, email, password)
}

func (c *countingProvider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	c.signIns.Add(1)
	return c.Provider.SignIn(ctx, email, password)
}

type testEnv struct {
	server   *httptest.Server
	store    *memory.Store
	provider *countingProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	sessions := session.NewMemoryStore()
	p := &countingProvider{Provider: local.New(store, auth.NewTokenManager("test-secret", "test", time.Hour), sessions, nil)}
	orch := provisioning.New(p, store, nil)
	gate := session.NewGate(p, nil)

	r := chi.NewRouter()
	r.Use(middleware.SessionKey("session"))
	NewHealthHandler(time.Now()).Register(r)
	NewAuthHandler(orch, gate, sessions, CookieConfig{Name: "session"}, nil).Register(r)
	NewProfileHandler(store, nil).Register(r)
	NewSignupSocket(orch, store.IsUsernameAvailable, 10*time.Millisecond, []string{"*"}, nil).Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, store: store, provider: p}
}

func validRegistration() models.RegistrationRequest {
	return models.RegistrationRequest{
		Email:           "a@b.com",
		Password:        "Abcdef12",
		ConfirmPassword: "Abcdef12",
		FullName:        "A B",
		BusinessName:    "B Co",
		Username:        "ab1",
		Role:            models.RoleOwner,
		TermsAccepted:   true,
	}
}
