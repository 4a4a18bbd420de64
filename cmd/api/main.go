// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Geodrop HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis.
//  4. Connect to PostgreSQL and run migrations, when users live there.
//  5. Build the credential pipeline (provider key cache, verifiers, refresh tokens).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/geodrop/internal/api"
	"github.com/taibuivan/geodrop/internal/core/point"
	"github.com/taibuivan/geodrop/internal/platform/config"
	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/internal/platform/jwks"
	"github.com/taibuivan/geodrop/internal/platform/migration"
	pgstore "github.com/taibuivan/geodrop/internal/platform/postgres"
	redisstore "github.com/taibuivan/geodrop/internal/platform/redis"
	"github.com/taibuivan/geodrop/internal/platform/sec"
	"github.com/taibuivan/geodrop/internal/users/account"
	"github.com/taibuivan/geodrop/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("user_store", cfg.UserStore),
	)

	// Startup deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	healthDeps := api.HealthDependencies{
		CheckStore: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}

	// ── 4. User Registry ──────────────────────────────────────────────────
	var userRepository account.UserRepository = account.NewRedisUserRepository(rdb)

	if cfg.UsesPostgres() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		userRepository = account.NewPostgresUserRepository(pool)
		healthDeps.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	}

	registry := account.NewService(userRepository, log)

	// ── 5. Credential Pipeline ────────────────────────────────────────────
	keyFetcher := jwks.NewHTTPFetcher(cfg.IdentityKeysURL, &http.Client{Timeout: cfg.IdentityKeyFetchTimeout}, log)
	keyCache := jwks.NewCache(keyFetcher, cfg.IdentityKeyCacheTTL,
		jwks.WithFetchTimeout(cfg.IdentityKeyFetchTimeout),
		jwks.WithLogger(log),
	)

	identityVerifier := sec.NewIdentityVerifier(keyCache, cfg.IdentityIssuer, cfg.IdentityAudience)

	refreshTokens, err := sec.NewRefreshTokenService(sec.RefreshTokenConfig{
		Issuer:         cfg.RefreshTokenIssuer,
		Audience:       cfg.IdentityAudience,
		KeyID:          cfg.RefreshTokenKeyID,
		TTL:            cfg.RefreshTokenTTL,
		Secret:         cfg.RefreshTokenSecret,
		PrivateKeyPath: cfg.RefreshTokenPrivKeyPath,
		PublicKeyPath:  cfg.RefreshTokenPubKeyPath,
	})
	must(log, err, "initialize refresh token service")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authHandler := auth.NewHandler(auth.NewService(identityVerifier, refreshTokens, refreshTokens, registry))
	pointHandler := point.NewHandler(point.NewService(point.NewRedisStore(rdb), cfg.PointTTL))

	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Point:     pointHandler,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger and installs it as the process default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Limited to startup wiring; after startup every error is returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
