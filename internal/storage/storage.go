package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/inventory-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a uniqueness conflict on user id, username or email.
var ErrConflict = errors.New("record already exists")

// ErrTransport indicates the store could not be reached or answered with an
// unexpected failure.
var ErrTransport = errors.New("store unavailable")

type accessTokenCtx struct{}

// WithAccessToken returns a context carrying the account's access token, used
// by hosted stores whose row-level security checks the caller's identity.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenCtx{}, token)
}

// AccessTokenFrom returns the access token carried by ctx.
func AccessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenCtx{}).(string)
	return token, ok && token != ""
}

// ProfileStore captures the profile operations needed during provisioning.
type ProfileStore interface {
	// IsUsernameAvailable is advisory only: a later CreateProfile can still
	// fail with ErrConflict.
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	CreateProfile(ctx context.Context, profile models.ProfileRecord) error
}

// AccountStore captures credential persistence for the local provider.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
}
