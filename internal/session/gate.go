package session

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/validation"
)

// AuthenticatedHome is where callers navigate after a successful login.
const AuthenticatedHome = "/dashboard"

// ErrMissingField is returned before any provider call when email or
// password is empty.
var ErrMissingField = errors.New("email and password are required")

// RejectedError is a failed sign-in. Message is shown to the user as is.
type RejectedError struct {
	Message string
	Err     error
}

func (e *RejectedError) Error() string { return "login rejected: " + e.Message }

func (e *RejectedError) Unwrap() error { return e.Err }

// Gate establishes sessions on the login path.
type Gate struct {
	provider provider.Provider
	logger   *zap.Logger
}

// NewGate builds a Gate over p.
func NewGate(p provider.Provider, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{provider: p, logger: logger}
}

// Login makes exactly one sign-in call when both fields are present. It
// never retries; navigation on success is the caller's job.
func (g *Gate) Login(ctx context.Context, email, password string) (models.Session, error) {
	if !validation.Login(email, password).Valid() {
		return models.Session{}, ErrMissingField
	}
	s, err := g.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		g.logger.Info("login rejected",
			zap.String("kind", provider.KindOf(err).String()),
			zap.Error(err))
		return models.Session{}, &RejectedError{Message: provider.MessageOf(err), Err: err}
	}
	return s, nil
}

// Current reports the session already held for the caller, if any.
func (g *Gate) Current(ctx context.Context) (models.Session, bool) {
	return g.provider.CurrentSession(ctx)
}
