package dto

import (
	"time"

	"github.com/hongminglow/inventory-be/internal/models"
)

// LoginRequest is the login form body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned once a session has been established.
type LoginResponse struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expiresAt,omitzero"`
	RedirectTo string    `json:"redirectTo"`
}

// SessionResponse describes the session bound to the caller's cookie.
type SessionResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// FeedbackBody is the UI-facing rendering of a provisioning outcome.
type FeedbackBody struct {
	Status          string            `json:"status"`
	Message         string            `json:"message"`
	Detail          string            `json:"detail,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
	RedirectTo      string            `json:"redirectTo,omitempty"`
	RedirectAfterMS int64             `json:"redirectAfterMs,omitempty"`
}

// SignupResponse is the body returned by POST /signup.
type SignupResponse struct {
	Account  *models.AccountIdentity `json:"account,omitempty"`
	Partial  bool                    `json:"partial,omitempty"`
	Fields   map[string]string       `json:"fields,omitempty"`
	Feedback FeedbackBody            `json:"feedback"`
}

// AvailabilityResponse is the advisory username availability answer.
type AvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
