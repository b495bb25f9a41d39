// Package availability gives live, advisory feedback on whether a username is
// free while the user is still typing.
package availability

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a lookup is issued.
const DefaultDebounce = 300 * time.Millisecond

// Lookup answers whether username is free. It is typically
// storage.ProfileStore.IsUsernameAvailable.
type Lookup func(ctx context.Context, username string) (bool, error)

// Result is the answer for one username.
type Result struct {
	Seq       uint64
	Username  string
	Available bool
	Err       error
}

// Checker debounces username checks and applies only the result for the most
// recent input. Older lookups are cancelled and their late results dropped.
type Checker struct {
	lookup   Lookup
	debounce time.Duration
	apply    func(Result)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	latest  Result
	hasLast bool
	closed  bool
}

// New builds a Checker. apply is called with the lock held, in sequence order,
// and must not call back into the Checker.
func New(lookup Lookup, debounce time.Duration, apply func(Result)) *Checker {
	if debounce < 0 {
		debounce = 0
	}
	return &Checker{lookup: lookup, debounce: debounce, apply: apply}
}

// Check schedules a lookup for username, superseding any pending or in-flight
// check. An empty username clears the current result.
func (c *Checker) Check(username string) uint64 {
	username = strings.TrimSpace(username)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.seq
	}
	c.seq++
	seq := c.seq
	c.stopLocked()

	if username == "" {
		c.latest = Result{}
		c.hasLast = false
		return seq
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(ctx, seq, username)
	})
	return seq
}

// Latest returns the most recent applied result.
func (c *Checker) Latest() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.hasLast
}

// Close cancels pending work. Results arriving afterwards are dropped.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopLocked()
}

func (c *Checker) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Checker) run(ctx context.Context, seq uint64, username string) {
	if ctx.Err() != nil {
		return
	}
	available, err := c.lookup(ctx, username)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		return
	}
	res := Result{Seq: seq, Username: username, Available: available, Err: err}
	c.latest = res
	c.hasLast = true
	if c.apply != nil {
		c.apply(res)
	}
}
