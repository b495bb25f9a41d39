package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/http/respond"
	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/models/dto"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/provisioning"
	"github.com/hongminglow/inventory-be/internal/session"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler owns the signup, login and session endpoints.
type AuthHandler struct {
	orch     *provisioning.Orchestrator
	gate     *session.Gate
	sessions session.Store
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(orch *provisioning.Orchestrator, gate *session.Gate, sessions session.Store, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{orch: orch, gate: gate, sessions: sessions, cookie: cookie, logger: logger}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.ErrBadPayload.Error())
		return
	}

	out := h.orch.Run(r.Context(), req, nil)
	fb := provisioning.FeedbackFor(out)
	body := dto.SignupResponse{Fields: out.FieldErrors, Feedback: feedbackBody(fb)}
	if out.Kind != provisioning.OutcomeRejected {
		identity := out.Identity
		body.Account = &identity
	}
	body.Partial = out.Kind == provisioning.OutcomeAccountCreatedProfileFailed

	respond.JSON(w, signupStatus(out), fb.Message, body)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.ErrBadPayload.Error())
		return
	}

	// A fresh key per login so a pre-existing cookie is never promoted.
	key := uuid.NewString()
	s, err := h.gate.Login(session.WithKey(r.Context(), key), req.Email, req.Password)
	if err != nil {
		var rejected *session.RejectedError
		switch {
		case errors.Is(err, session.ErrMissingField):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &rejected):
			respond.Error(w, http.StatusUnauthorized, rejected.Message)
		default:
			h.logger.Error("login failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	h.setCookie(w, key, s.ExpiresAt)
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		UserID:     s.UserID,
		Email:      s.Email,
		ExpiresAt:  s.ExpiresAt,
		RedirectTo: session.AuthenticatedHome,
	})
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.gate.Current(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "no active session")
		return
	}
	respond.JSON(w, http.StatusOK, "active session", dto.SessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if key, ok := session.KeyFromContext(r.Context()); ok {
		if err := h.sessions.Delete(r.Context(), key); err != nil {
			h.logger.Warn("drop session failed", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

func signupStatus(out provisioning.Outcome) int {
	switch out.Kind {
	case provisioning.OutcomeSuccess:
		return http.StatusCreated
	case provisioning.OutcomeAccountCreatedProfileFailed:
		return http.StatusAccepted
	}
	if len(out.FieldErrors) > 0 {
		return http.StatusBadRequest
	}
	switch provider.KindOf(out.Err) {
	case provider.KindDuplicateAccount:
		return http.StatusConflict
	case provider.KindWeakPassword, provider.KindRejected:
		return http.StatusUnprocessableEntity
	case provider.KindInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func feedbackBody(fb provisioning.Feedback) dto.FeedbackBody {
	return dto.FeedbackBody{
		Status:          fb.Status,
		Message:         fb.Message,
		Detail:          fb.Detail,
		Fields:          fb.Fields,
		RedirectTo:      fb.RedirectTo,
		RedirectAfterMS: fb.RedirectAfter.Milliseconds(),
	}
}
