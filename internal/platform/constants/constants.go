// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuers, key-set caching and header names.
  - Storage: Redis key taxonomy for users, points and the geo index.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "geodrop-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// DefaultIdentityIssuer is the 'iss' claim of Sign in with Apple identity tokens.
	DefaultIdentityIssuer = "https://appleid.apple.com"

	// DefaultIdentityKeysURL is where the identity provider publishes its signing keys.
	DefaultIdentityKeysURL = "https://appleid.apple.com/auth/keys"

	// DefaultKeyCacheTTL bounds how long a fetched provider key set is trusted.
	DefaultKeyCacheTTL = 24 * time.Hour

	// DefaultKeyFetchTimeout is the upper bound on a single key set fetch.
	DefaultKeyFetchTimeout = 5 * time.Second

	// RefreshTokenIssuer is the standard 'iss' claim in refresh tokens.
	RefreshTokenIssuer = "geodrop-api"

	// RefreshTokenTTL is the lifetime of a refresh token (4 weeks).
	RefreshTokenTTL = 4 * 7 * 24 * time.Hour

	// AuthScheme is the optional scheme prefix on the Authorization header.
	AuthScheme = "Bearer"
)

// # Points

const (
	// DefaultPointTTL is how long a submitted point stays visible.
	DefaultPointTTL = 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderXRequestID      = "X-Request-ID"
	HeaderXRealIP         = "X-Real-IP"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderOrigin          = "Origin"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"

	FieldID        = "id"
	FieldToken     = "token"
	FieldUser      = "user"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldRadius    = "radius"
	FieldCreatedAt = "created_at"
	FieldExpiresAt = "expires_at"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)

// # Redis Keys (Storage Taxonomy)

const (
	// RedisPrefixUser namespaces user profile hashes.
	RedisPrefixUser = "user:"

	// RedisPrefixPoint namespaces point record hashes.
	RedisPrefixPoint = "point:"

	// RedisKeyPointIndex is the GEO sorted set holding one member per point id.
	RedisKeyPointIndex = "points:geo"
)
