package provisioning

import (
	"context"
	"errors"
	"sync"

	"github.com/hongminglow/inventory-be/internal/models"
)

// ErrSubmissionInFlight is returned when a form is submitted while a previous
// submission is still running.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Form is one signup form instance. It allows a single run at a time and
// publishes state transitions to subscribers.
type Form struct {
	orch *Orchestrator

	mu          sync.Mutex
	state       State
	running     bool
	last        *Outcome
	subscribers []func(State)
}

// NewForm returns an idle form bound to orch.
func NewForm(orch *Orchestrator) *Form {
	return &Form{orch: orch}
}

// Subscribe registers fn to be called on every state transition. fn runs on
// the submitting goroutine and must not call Submit.
func (f *Form) Subscribe(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// State reports the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Last returns the outcome of the most recent completed run.
func (f *Form) Last() (Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return Outcome{}, false
	}
	return *f.last, true
}

// Submit runs the orchestrator for req unless a run is already active.
func (f *Form) Submit(ctx context.Context, req models.RegistrationRequest) (Outcome, error) {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	}
	f.running = true
	f.mu.Unlock()

	out := f.orch.Run(ctx, req, f.transition)

	f.mu.Lock()
	f.running = false
	f.last = &out
	f.mu.Unlock()
	return out, nil
}

func (f *Form) transition(s State) {
	f.mu.Lock()
	f.state = s
	subs := append([]func(State){}, f.subscribers...)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
