package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.ProfileStore = (*Store)(nil)
	_ storage.AccountStore = (*Store)(nil)
)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for profiles and local accounts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_unique_idx ON accounts (lower(email));`,
		`CREATE TABLE IF NOT EXISTS profile (
			user_id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			full_name TEXT NOT NULL,
			business_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE profile ADD COLUMN IF NOT EXISTS phone TEXT NOT NULL DEFAULT '';`,
		`ALTER TABLE profile DROP CONSTRAINT IF EXISTS profile_role_check;`,
		`ALTER TABLE profile ADD CONSTRAINT profile_role_check CHECK (role IN ('owner', 'staff'));`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// IsUsernameAvailable reports whether no profile row holds username.
func (s *Store) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM profile WHERE username = $1);`
	var taken bool
	if err := s.pool.QueryRow(ctx, query, username).Scan(&taken); err != nil {
		return false, transport(err)
	}
	return !taken, nil
}

// CreateProfile inserts a new profile row.
func (s *Store) CreateProfile(ctx context.Context, profile models.ProfileRecord) error {
	const query = `
		INSERT INTO profile (user_id, username, phone, role, full_name, business_name)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := s.pool.Exec(ctx, query,
		profile.UserID, profile.Username, profile.Phone, string(profile.Role), profile.FullName, profile.BusinessName)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return transport(err)
	}
	return nil
}

// CreateAccount inserts a new local credential row.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, created_at;
	`
	row := s.pool.QueryRow(ctx, query, account.ID, strings.TrimSpace(account.Email), account.PasswordHash)
	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrConflict
		}
		return models.Account{}, err
	}
	return created, nil
}

// FindAccountByEmail fetches an account by email address, ignoring case.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `
	SELECT id, email, password_hash, created_at
	FROM accounts
	WHERE lower(email) = lower($1);
	`
	row := s.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	if err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		if isUniqueViolation(err) {
			return models.Account{}, err
		}
		return models.Account{}, transport(err)
	}
	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func transport(err error) error {
	return fmt.Errorf("%w: %v", storage.ErrTransport, err)
}
