// Package provider defines the credential provider contract shared by the
// hosted and self-hosted implementations.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/inventory-be/internal/models"
)

// Provider creates accounts and establishes sessions.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (models.AccountIdentity, error)
	// SignIn persists the established session under the session key in ctx.
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	// CurrentSession reports the session already held for the key in ctx.
	CurrentSession(ctx context.Context) (models.Session, bool)
}

// Kind classifies a provider failure.
type Kind int

const (
	KindTransport Kind = iota
	KindDuplicateAccount
	KindWeakPassword
	KindInvalidCredentials
	// KindRejected is any other refusal the provider explained, such as a
	// rate limit or disabled signups.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateAccount:
		return "duplicate_account"
	case KindWeakPassword:
		return "weak_password"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindRejected:
		return "rejected"
	default:
		return "transport"
	}
}

// Error is returned by every Provider operation. Message is safe to show the user.
type Error struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TransportMessage is shown when the provider could not be reached.
const TransportMessage = "Unable to reach the authentication service. Please try again."

// Transport wraps a network-level failure of op.
func Transport(op string, err error) *Error {
	return &Error{Op: op, Kind: KindTransport, Message: TransportMessage, Err: err}
}

// KindOf returns the kind of a provider error, or KindTransport for any
// other error.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindTransport
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return TransportMessage
}
