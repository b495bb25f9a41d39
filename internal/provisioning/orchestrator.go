// Package provisioning turns a signup form submission into an account, a
// profile record and UI feedback.
package provisioning

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/storage"
	"github.com/hongminglow/inventory-be/internal/validation"
)

// State is a step of a provisioning run.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateCreatingAccount
	StateCreatingProfile
	StateDone
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateCreatingAccount:
		return "creating_account"
	case StateCreatingProfile:
		return "creating_profile"
	case StateDone:
		return "done"
	default:
		return "idle"
	}
}

// Busy reports whether a network call is in flight in s.
func (s State) Busy() bool {
	return s == StateCreatingAccount || s == StateCreatingProfile
}

// AccountCreator is the part of the credential provider the orchestrator uses.
type AccountCreator interface {
	SignUp(ctx context.Context, email, password string) (models.AccountIdentity, error)
}

// ProfileCreator is the part of the profile store the orchestrator uses.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile models.ProfileRecord) error
}

// Orchestrator sequences validation, account creation and profile creation.
// It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	accounts       AccountCreator
	profiles       ProfileCreator
	logger         *zap.Logger
	profileTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProfileTimeout bounds the profile step, which otherwise runs detached
// from the caller's cancellation.
func WithProfileTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.profileTimeout = d }
}

// New builds an Orchestrator.
func New(accounts AccountCreator, profiles ProfileCreator, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{accounts: accounts, profiles: profiles, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one provisioning attempt. observe, if non-nil, is called on
// every state entered, ending with StateDone. A created account is never
// rolled back. Once the account exists, cancelling ctx no longer aborts the
// profile step.
func (o *Orchestrator) Run(ctx context.Context, req models.RegistrationRequest, observe func(State)) Outcome {
	enter := func(s State) {
		if observe != nil {
			observe(s)
		}
	}
	done := func(out Outcome) Outcome {
		enter(StateDone)
		return out
	}

	req.Email = strings.TrimSpace(req.Email)

	enter(StateValidating)
	if errs := validation.Validate(req); !errs.Valid() {
		return done(Rejected(errs))
	}

	enter(StateCreatingAccount)
	identity, err := o.accounts.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		o.logger.Warn("sign up failed",
			zap.String("kind", provider.KindOf(err).String()),
			zap.Error(err))
		return done(Rejected(err))
	}

	enter(StateCreatingProfile)
	if err := o.createProfile(storage.WithAccessToken(ctx, identity.AccessToken), req.Profile(identity.UserID)); err != nil {
		o.logger.Error("account created without profile",
			zap.String("user_id", identity.UserID),
			zap.String("username", req.Username),
			zap.Error(err))
		return done(AccountCreatedProfileFailed(identity, err))
	}

	o.logger.Info("account provisioned", zap.String("user_id", identity.UserID))
	return done(Success(identity))
}

func (o *Orchestrator) createProfile(ctx context.Context, profile models.ProfileRecord) error {
	ctx = context.WithoutCancel(ctx)
	if o.profileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.profileTimeout)
		defer cancel()
	}
	return o.profiles.CreateProfile(ctx, profile)
}
