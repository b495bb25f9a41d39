package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/config"
	"github.com/hongminglow/inventory-be/internal/http/handlers"
	"github.com/hongminglow/inventory-be/internal/http/respond"
	"github.com/hongminglow/inventory-be/internal/middleware"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/provisioning"
	"github.com/hongminglow/inventory-be/internal/session"
	"github.com/hongminglow/inventory-be/internal/storage"
)

// Deps are the backends the routes run against.
type Deps struct {
	Provider provider.Provider
	Profiles storage.ProfileStore
	Sessions session.Store
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps, logger *zap.Logger) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, deps, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       120 * time.Second,
	}}
}

// writeTimeout covers a signup's two sequential outbound calls.
func writeTimeout(cfg config.Config) time.Duration {
	const base = 10 * time.Second
	if cfg.ProviderTimeout <= 0 {
		return base
	}
	return 2*cfg.ProviderTimeout + base
}

// Routes builds the router with every endpoint mounted.
func Routes(cfg config.Config, deps Deps, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	orch := provisioning.New(deps.Provider, deps.Profiles, logger.Named("provisioning"),
		provisioning.WithProfileTimeout(cfg.ProviderTimeout))
	gate := session.NewGate(deps.Provider, logger.Named("session"))

	r := chi.NewRouter()
	r.NotFound(respond.NotFound)
	r.MethodNotAllowed(respond.MethodNotAllowed)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger.Named("http")))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SessionKey(cfg.SessionCookie))

	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(orch, gate, deps.Sessions, handlers.CookieConfig{
		Name:   cfg.SessionCookie,
		Secure: cfg.Production(),
	}, logger).Register(r)
	handlers.NewProfileHandler(deps.Profiles, logger).Register(r)
	handlers.NewSignupSocket(orch, deps.Profiles.IsUsernameAvailable, cfg.UsernameDebounce, cfg.CORSOrigins, logger.Named("ws")).Register(r)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
