// Package session owns the login path and the storage of sessions issued by
// the credential provider.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hongminglow/inventory-be/internal/models"
)

// ErrNoKey is returned when a session is persisted without a key in ctx.
var ErrNoKey = errors.New("session: no session key in context")

// Store persists sessions by an opaque key (the session cookie value).
type Store interface {
	Save(ctx context.Context, key string, s models.Session) error
	// Load returns false when no live session is held for key.
	Load(ctx context.Context, key string) (models.Session, bool, error)
	Delete(ctx context.Context, key string) error
}

type keyCtx struct{}

// WithKey returns a context carrying the caller's session key.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, keyCtx{}, key)
}

// KeyFromContext returns the session key carried by ctx.
func KeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(keyCtx{}).(string)
	return key, ok && key != ""
}

// Persist saves s under the session key in ctx.
func Persist(ctx context.Context, store Store, s models.Session) error {
	key, ok := KeyFromContext(ctx)
	if !ok {
		return ErrNoKey
	}
	return store.Save(ctx, key, s)
}

// Lookup loads the session for the key in ctx.
func Lookup(ctx context.Context, store Store) (models.Session, bool, error) {
	key, ok := KeyFromContext(ctx)
	if !ok {
		return models.Session{}, false, nil
	}
	return store.Load(ctx, key)
}

// DefaultSweepInterval is how often Sweeper drops expired sessions.
const DefaultSweepInterval = 5 * time.Minute

type memoryEntry struct {
	session  models.Session
	deadline time.Time
}

// MemoryStore keeps sessions in process memory. Sessions without an expiry
// are held for DefaultTTL. Expired entries are dropped on load and by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, key string, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline := s.ExpiresAt
	if deadline.IsZero() {
		deadline = m.now().Add(DefaultTTL)
	}
	m.sessions[key] = memoryEntry{session: s, deadline: deadline}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) (models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[key]
	if !ok {
		return models.Session{}, false, nil
	}
	if !m.now().Before(e.deadline) {
		delete(m.sessions, key)
		return models.Session{}, false, nil
	}
	return e.session, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

// Sweep drops every expired session and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for key, e := range m.sessions {
		if !now.Before(e.deadline) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// Len reports how many sessions are held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) Sweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
