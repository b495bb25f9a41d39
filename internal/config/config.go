package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Credential provider backends.
const (
	ProviderSupabase = "supabase"
	ProviderLocal    = "local"
)

// Profile store backends.
const (
	StoreREST     = "rest"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Session store backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port             string
	Env              string
	LogLevel         string
	AuthProvider     string
	SupabaseURL      string
	SupabaseAnonKey  string
	ProfileStore     string
	ProfileTable     string
	DatabaseURL      string
	JWTSecret        string
	JWTIssuer        string
	JWTTTL           time.Duration
	SessionStore     string
	RedisURL         string
	SessionCookie    string
	UsernameDebounce time.Duration
	ProviderTimeout  time.Duration
	CORSOrigins      []string
}

// Load reads configuration from the environment and validates the settings
// the selected backends depend on.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("PORT"), "8080"),
		Env:             fallback(os.Getenv("APP_ENV"), "development"),
		LogLevel:        fallback(os.Getenv("LOG_LEVEL"), "info"),
		AuthProvider:    strings.ToLower(fallback(os.Getenv("AUTH_PROVIDER"), ProviderSupabase)),
		SupabaseURL:     fallback(os.Getenv("SUPABASE_URL"), strings.TrimSpace(os.Getenv("VITE_SUPABASE_URL"))),
		SupabaseAnonKey: fallback(os.Getenv("SUPABASE_ANON_KEY"), strings.TrimSpace(os.Getenv("VITE_SUPABASE_ANON_KEY"))),
		ProfileTable:    fallback(os.Getenv("PROFILE_TABLE"), "profile"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:       fallback(os.Getenv("JWT_ISSUER"), "inventory-be"),
		SessionStore:    strings.ToLower(fallback(os.Getenv("SESSION_STORE"), SessionMemory)),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		SessionCookie:   fallback(os.Getenv("SESSION_COOKIE"), "session"),
		CORSOrigins:     parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	defaultStore := StoreREST
	if cfg.AuthProvider == ProviderLocal {
		defaultStore = StorePostgres
	}
	cfg.ProfileStore = strings.ToLower(fallback(os.Getenv("PROFILE_STORE"), defaultStore))

	cfg.JWTTTL = positiveDuration(os.Getenv("JWT_TTL_MINUTES"), time.Minute, 60*time.Minute)
	cfg.UsernameDebounce = positiveDuration(os.Getenv("USERNAME_CHECK_DEBOUNCE_MS"), time.Millisecond, 300*time.Millisecond)
	cfg.ProviderTimeout = positiveDuration(os.Getenv("PROVIDER_TIMEOUT_SECONDS"), time.Second, 15*time.Second)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.AuthProvider {
	case ProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required when AUTH_PROVIDER=supabase")
		}
	case ProviderLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_PROVIDER=local")
		}
		if c.ProfileStore == StoreREST {
			return errors.New("PROFILE_STORE=rest requires AUTH_PROVIDER=supabase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.ProfileStore {
	case StoreREST:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required when PROFILE_STORE=rest")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when PROFILE_STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown PROFILE_STORE %q", c.ProfileStore)
	}

	switch c.SessionStore {
	case SessionMemory:
	case SessionRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Production reports whether APP_ENV selects production behaviour.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveDuration(raw string, unit, def time.Duration) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
