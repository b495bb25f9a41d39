package provisioning

import (
	"errors"
	"time"

	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/storage"
)

// Fixed post-signup navigation.
const (
	LoginPath     = "/login"
	RedirectDelay = 2 * time.Second
)

// Feedback statuses.
const (
	StatusSuccess  = "success"
	StatusPartial  = "partial"
	StatusRejected = "rejected"
)

// User-facing messages.
const (
	MsgSuccess      = "Account created successfully! Redirecting to login..."
	MsgPartial      = "Your account was created, but we couldn't save your profile info. Please contact support to finish setting up your account."
	MsgFixFields    = "Please correct the highlighted fields."
	DetailConflict  = "profile save failed"
	DetailTransport = "profile service unavailable"
)

// Feedback is what the signup screen shows for an outcome.
type Feedback struct {
	Status        string
	Message       string
	Detail        string
	Fields        map[string]string
	RedirectTo    string
	RedirectAfter time.Duration
}

// FeedbackFor maps an outcome to display text. Raw errors are never exposed.
func FeedbackFor(out Outcome) Feedback {
	switch out.Kind {
	case OutcomeSuccess:
		return Feedback{
			Status:        StatusSuccess,
			Message:       MsgSuccess,
			RedirectTo:    LoginPath,
			RedirectAfter: RedirectDelay,
		}
	case OutcomeAccountCreatedProfileFailed:
		detail := DetailTransport
		if errors.Is(out.Err, storage.ErrConflict) {
			detail = DetailConflict
		}
		return Feedback{Status: StatusPartial, Message: MsgPartial, Detail: detail}
	}

	if len(out.FieldErrors) > 0 {
		return Feedback{Status: StatusRejected, Message: MsgFixFields, Fields: out.FieldErrors}
	}
	return Feedback{Status: StatusRejected, Message: provider.MessageOf(out.Err)}
}
