package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/inventory-be/internal/auth"
	"github.com/hongminglow/inventory-be/internal/config"
	"github.com/hongminglow/inventory-be/internal/provider/local"
	"github.com/hongminglow/inventory-be/internal/session"
	"github.com/hongminglow/inventory-be/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		SessionCookie:    "session",
		UsernameDebounce: 10 * time.Millisecond,
		CORSOrigins:      []string{"http://localhost:5173"},
	}
}

func testDeps() Deps {
	store := memory.New()
	sessions := session.NewMemoryStore()
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	return Deps{
		Provider: local.New(store, tokens, sessions, nil),
		Profiles: store,
		Sessions: sessions,
	}
}

func TestRoutesServeHealthWithRequestID(t *testing.T) {
	ts := httptest.NewServer(Routes(testConfig(), testDeps(), nil))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRoutesUnknownPath(t *testing.T) {
	ts := httptest.NewServer(Routes(testConfig(), testDeps(), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewUsesConfiguredAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "9090"
	srv := New(cfg, testDeps(), nil)
	assert.Equal(t, cfg.HTTPAddress(), srv.inner.Addr)
}

func TestRoutesWrongMethod(t *testing.T) {
	ts := httptest.NewServer(Routes(testConfig(), testDeps(), nil))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestWriteTimeoutCoversSignupCalls(t *testing.T) {
	cfg := testConfig()
	cfg.ProviderTimeout = 15 * time.Second
	srv := New(cfg, testDeps(), nil)
	assert.Greater(t, srv.inner.WriteTimeout, 2*cfg.ProviderTimeout)

	cfg.ProviderTimeout = 0
	assert.Equal(t, 10*time.Second, writeTimeout(cfg))
}
