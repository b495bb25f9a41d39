// Package memory keeps profiles and accounts in process memory. It backs
// PROFILE_STORE=memory for local development and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/storage"
)

var (
	_ storage.ProfileStore = (*Store)(nil)
	_ storage.AccountStore = (*Store)(nil)
)

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu         sync.RWMutex
	profiles   map[string]models.ProfileRecord // by user id
	usernames  map[string]string               // username -> user id
	accounts   map[string]models.Account       // by lowercased email
	accountIDs map[string]struct{}
	now        func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		profiles:   make(map[string]models.ProfileRecord),
		usernames:  make(map[string]string),
		accounts:   make(map[string]models.Account),
		accountIDs: make(map[string]struct{}),
		now:        time.Now,
	}
}

// IsUsernameAvailable reports whether no profile holds username.
func (s *Store) IsUsernameAvailable(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.usernames[username]
	return !taken, nil
}

// CreateProfile inserts profile, failing with storage.ErrConflict when the
// user id or username is already present.
func (s *Store) CreateProfile(_ context.Context, profile models.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.UserID]; ok {
		return storage.ErrConflict
	}
	if _, ok := s.usernames[profile.Username]; ok {
		return storage.ErrConflict
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}
	s.profiles[profile.UserID] = profile
	s.usernames[profile.Username] = profile.UserID
	return nil
}

// Profile returns the profile stored for userID.
func (s *Store) Profile(userID string) (models.ProfileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// CreateAccount inserts account keyed by its case-folded email.
func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	key := strings.ToLower(account.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; ok {
		return models.Account{}, storage.ErrConflict
	}
	if _, ok := s.accountIDs[account.ID]; ok {
		return models.Account{}, storage.ErrConflict
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = s.now()
	}
	s.accounts[key] = account
	s.accountIDs[account.ID] = struct{}{}
	return account, nil
}

// FindAccountByEmail looks an account up case-insensitively.
func (s *Store) FindAccountByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return account, nil
}
