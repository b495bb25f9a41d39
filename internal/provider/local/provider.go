// Package local is a self-hosted credential provider: accounts live in the
// application database, passwords are bcrypt hashes, and sessions are JWTs
// signed by the service.
package local

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/inventory-be/internal/auth"
	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/session"
	"github.com/hongminglow/inventory-be/internal/storage"
)

// Password limits enforced on the provider side. bcrypt ignores input past 72 bytes.
const (
	minPasswordBytes = 6
	maxPasswordBytes = 72
)

var _ provider.Provider = (*Provider)(nil)

// Provider implements provider.Provider over an AccountStore.
type Provider struct {
	accounts storage.AccountStore
	tokens   *auth.TokenManager
	sessions session.Store
	logger   *zap.Logger
	cost     int
}

// New builds a Provider.
func New(accounts storage.AccountStore, tokens *auth.TokenManager, sessions session.Store, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// SignUp creates an account with a freshly generated user id.
func (p *Provider) SignUp(ctx context.Context, email, password string) (models.AccountIdentity, error) {
	const op = "sign up"
	if n := len(password); n < minPasswordBytes || n > maxPasswordBytes {
		return models.AccountIdentity{}, &provider.Error{
			Op:      op,
			Kind:    provider.KindWeakPassword,
			Message: "Password should be between 6 and 72 characters.",
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.AccountIdentity{}, &provider.Error{Op: op, Kind: provider.KindWeakPassword, Message: "Password cannot be used.", Err: err}
	}

	created, err := p.accounts.CreateAccount(ctx, models.Account{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return models.AccountIdentity{}, &provider.Error{Op: op, Kind: provider.KindDuplicateAccount, Message: "User already registered", Err: err}
		}
		return models.AccountIdentity{}, provider.Transport(op, err)
	}
	return created.Identity(), nil
}

// SignIn checks the password hash and issues a signed session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	const op = "sign in"
	account, err := p.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Session{}, invalidCredentials(op, nil)
		}
		return models.Session{}, provider.Transport(op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, invalidCredentials(op, err)
	}

	token, expiresAt, err := p.tokens.Generate(account.Identity())
	if err != nil {
		return models.Session{}, provider.Transport(op, err)
	}
	s := models.Session{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      account.ID,
		Email:       account.Email,
		ExpiresAt:   expiresAt,
	}
	if err := session.Persist(ctx, p.sessions, s); err != nil {
		return models.Session{}, provider.Transport(op, err)
	}
	return s, nil
}

// CurrentSession returns the stored session if its token still verifies.
func (p *Provider) CurrentSession(ctx context.Context) (models.Session, bool) {
	s, ok, err := session.Lookup(ctx, p.sessions)
	if err != nil {
		p.logger.Warn("session lookup failed", zap.Error(err))
		return models.Session{}, false
	}
	if !ok {
		return models.Session{}, false
	}
	if _, err := p.tokens.Parse(s.AccessToken); err != nil {
		p.logger.Debug("stored session token rejected", zap.Error(err))
		return models.Session{}, false
	}
	return s, true
}

func invalidCredentials(op string, err error) *provider.Error {
	return &provider.Error{Op: op, Kind: provider.KindInvalidCredentials, Message: "Invalid login credentials", Err: err}
}
