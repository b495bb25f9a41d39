package provisioning

import (
	"fmt"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/validation"
)

// OutcomeKind tags the result of a provisioning run.
type OutcomeKind int

const (
	OutcomeRejected OutcomeKind = iota
	OutcomeSuccess
	OutcomeAccountCreatedProfileFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAccountCreatedProfileFailed:
		return "account_created_profile_failed"
	default:
		return "rejected"
	}
}

// Outcome is the terminal result of a run.
//
//   - Success: Identity is set.
//   - AccountCreatedProfileFailed: Identity is set and Err is a *PartialProvisioningError.
//   - Rejected: FieldErrors is set for validation failures, Err for provider failures.
type Outcome struct {
	Kind        OutcomeKind
	Identity    models.AccountIdentity
	FieldErrors validation.Errors
	Err         error
}

// Success returns a successful outcome.
func Success(identity models.AccountIdentity) Outcome {
	return Outcome{Kind: OutcomeSuccess, Identity: identity}
}

// Rejected returns a rejected outcome caused by err.
func Rejected(err error) Outcome {
	o := Outcome{Kind: OutcomeRejected, Err: err}
	if fields, ok := err.(validation.Errors); ok {
		o.FieldErrors = fields
	}
	return o
}

// AccountCreatedProfileFailed returns the partial provisioning outcome.
func AccountCreatedProfileFailed(identity models.AccountIdentity, err error) Outcome {
	return Outcome{
		Kind:     OutcomeAccountCreatedProfileFailed,
		Identity: identity,
		Err:      &PartialProvisioningError{Identity: identity, Err: err},
	}
}

// PartialProvisioningError reports an account that exists without a profile.
// Signing up again will fail with a duplicate account.
type PartialProvisioningError struct {
	Identity models.AccountIdentity
	Err      error
}

func (e *PartialProvisioningError) Error() string {
	return fmt.Sprintf("account %s created but profile provisioning failed: %v", e.Identity.UserID, e.Err)
}

func (e *PartialProvisioningError) Unwrap() error {
	return e.Err
}
