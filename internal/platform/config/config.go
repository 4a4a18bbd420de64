// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Redis, key cache, verifiers) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/geodrop/pkg/query"
)

// User store backends.
const (
	UserStoreRedis    = "redis"
	UserStorePostgres = "postgres"
)

// minSecretLength is the shortest accepted HS256 refresh token secret.
const minSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the Geodrop API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Key-Value Store (Redis). Holds points, the geo index and, by default, users.
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// UserStore selects the user registry backend ("redis" or "postgres").
	UserStore string `env:"USER_STORE" envDefault:"redis"`

	// Relational Database (PostgreSQL), only used when UserStore is "postgres".
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Identity provider (Sign in with Apple)
	IdentityIssuer          string        `env:"IDP_ISSUER"            envDefault:"https://appleid.apple.com"`
	IdentityAudience        string        `env:"IDP_AUDIENCE,required,notEmpty"`
	IdentityKeysURL         string        `env:"IDP_KEYS_URL"          envDefault:"https://appleid.apple.com/auth/keys"`
	IdentityKeyCacheTTL     time.Duration `env:"IDP_KEY_CACHE_TTL"     envDefault:"24h"`
	IdentityKeyFetchTimeout time.Duration `env:"IDP_KEY_FETCH_TIMEOUT" envDefault:"5s"`

	// Refresh tokens. Either a shared secret (HS256) or an RSA key pair (RS256).
	RefreshTokenIssuer      string        `env:"REFRESH_TOKEN_ISSUER"           envDefault:"geodrop-api"`
	RefreshTokenKeyID       string        `env:"REFRESH_TOKEN_KEY_ID,required,notEmpty"`
	RefreshTokenSecret      string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenPrivKeyPath string        `env:"REFRESH_TOKEN_PRIVATE_KEY_PATH"`
	RefreshTokenPubKeyPath  string        `env:"REFRESH_TOKEN_PUBLIC_KEY_PATH"`
	RefreshTokenTTL         time.Duration `env:"REFRESH_TOKEN_TTL"              envDefault:"672h"`

	// PointTTL is how long a submitted point remains visible.
	PointTTL time.Duration `env:"POINT_TTL" envDefault:"24h"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.UserStore {
	case UserStoreRedis:
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when USER_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("USER_STORE must be %q or %q, got %q", UserStoreRedis, UserStorePostgres, c.UserStore))
	}

	// The two token kinds must never be confused with each other.
	if c.RefreshTokenIssuer == c.IdentityIssuer {
		errs = append(errs, errors.New("REFRESH_TOKEN_ISSUER must differ from IDP_ISSUER"))
	}

	hasKeyPair := c.RefreshTokenPrivKeyPath != "" || c.RefreshTokenPubKeyPath != ""
	switch {
	case hasKeyPair && (c.RefreshTokenPrivKeyPath == "" || c.RefreshTokenPubKeyPath == ""):
		errs = append(errs, errors.New("REFRESH_TOKEN_PRIVATE_KEY_PATH and REFRESH_TOKEN_PUBLIC_KEY_PATH must be set together"))
	case !hasKeyPair && len(c.RefreshTokenSecret) < minSecretLength:
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d bytes when no key pair is configured", minSecretLength))
	}

	if c.IdentityKeyCacheTTL <= 0 {
		errs = append(errs, errors.New("IDP_KEY_CACHE_TTL must be positive"))
	}
	if c.IdentityKeyFetchTimeout <= 0 {
		errs = append(errs, errors.New("IDP_KEY_FETCH_TIMEOUT must be positive"))
	}
	if c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_TTL must be positive"))
	}
	if c.PointTTL <= 0 {
		errs = append(errs, errors.New("POINT_TTL must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether the user registry is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.UserStore == UserStorePostgres
}

// AllowedOrigins returns the extra CORS origins as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}
