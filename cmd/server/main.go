package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/auth"
	"github.com/hongminglow/inventory-be/internal/config"
	"github.com/hongminglow/inventory-be/internal/logging"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/provider/local"
	"github.com/hongminglow/inventory-be/internal/provider/supabase"
	"github.com/hongminglow/inventory-be/internal/server"
	"github.com/hongminglow/inventory-be/internal/session"
	"github.com/hongminglow/inventory-be/internal/storage"
	"github.com/hongminglow/inventory-be/internal/storage/memory"
	"github.com/hongminglow/inventory-be/internal/storage/postgres"
	"github.com/hongminglow/inventory-be/internal/storage/rest"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init session store", zap.Error(err))
	}
	defer closeSessions()

	var (
		profiles storage.ProfileStore
		accounts storage.AccountStore
	)
	switch cfg.ProfileStore {
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("init database", zap.Error(err))
		}
		defer pg.Close()
		profiles, accounts = pg, pg
	case config.StoreREST:
		profiles = rest.NewStore(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ProfileTable, httpClient)
	default:
		mem := memory.New()
		profiles, accounts = mem, mem
	}

	var p provider.Provider
	switch cfg.AuthProvider {
	case config.ProviderLocal:
		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
		p = local.New(accounts, tokens, sessions, logger.Named("local"))
	default:
		p = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, httpClient, sessions, logger.Named("supabase"))
	}

	srv := server.New(cfg, server.Deps{Provider: p, Profiles: profiles, Sessions: sessions}, logger)

	go func() {
		logger.Info("inventory backend listening",
			zap.String("addr", cfg.HTTPAddress()),
			zap.String("auth_provider", cfg.AuthProvider),
			zap.String("profile_store", cfg.ProfileStore),
			zap.String("session_store", cfg.SessionStore))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.SessionStore != config.SessionRedis {
		mem := session.NewMemoryStore()
		sweepCtx, stop := context.WithCancel(ctx)
		go mem.Sweeper(sweepCtx, session.DefaultSweepInterval)
		return mem, stop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return session.NewRedisStore(rdb, ""), func() { _ = rdb.Close() }, nil
}
