// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jwks caches the identity provider's public signing keys.

The whole key set is fetched at once and replaced wholesale once it is older
than the configured TTL. Lookups of an unknown key id never trigger an extra
fetch on their own.

Architecture:

  - Cache: process-wide, safe for concurrent use, one in-flight refresh at a time.
  - Fetcher: the network side, swappable in tests.
*/
package jwks

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/internal/platform/metrics"
	"github.com/taibuivan/geodrop/internal/platform/sec"
)

// Fetcher retrieves the provider's current key set, indexed by key id.
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// Option customizes a [Cache].
type Option func(*Cache)

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithFetchTimeout bounds a single key set fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = timeout }
}

// WithLogger sets the logger used for refresh events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// Cache is a TTL'd, in-memory copy of the provider key set.
type Cache struct {
	fetcher      Fetcher
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewCache creates an empty cache. The first lookup triggers the first fetch.
func NewCache(fetcher Fetcher, ttl time.Duration, opts ...Option) *Cache {
	cache := &Cache{
		fetcher:      fetcher,
		ttl:          ttl,
		fetchTimeout: constants.DefaultKeyFetchTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

/*
Key returns the public key for kid, refreshing the key set first when it is
empty or stale.

Returns:
  - *rsa.PublicKey: The signing key
  - error: Wraps [sec.ErrKeyNotFound] for an unknown kid or a failed refresh
*/
func (c *Cache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, fresh := c.snapshot()

	if !fresh {
		refreshed, err := c.refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sec.ErrKeyNotFound, err)
		}
		keys = refreshed
	}

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kid %q", sec.ErrKeyNotFound, kid)
	}
	return key, nil
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

func (c *Cache) snapshot() (map[string]*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.keys == nil || c.now().Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.keys, true
}

// refresh fetches the key set once for all concurrent callers.
// A failed fetch leaves the previous set and its timestamp untouched.
func (c *Cache) refresh(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	result, err, _ := c.group.Do("keys", func() (interface{}, error) {

		// Another caller may have refreshed while we waited on the group.
		if keys, fresh := c.snapshot(); fresh {
			return keys, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		keys, err := c.fetcher.Fetch(fetchCtx)
		if err != nil {
			metrics.KeySetRefreshes.WithLabelValues("failure").Inc()
			c.logger.WarnContext(ctx, "jwks_refresh_failed", slog.String("error", err.Error()))
			return nil, err
		}

		c.mu.Lock()
		c.keys = keys
		c.fetchedAt = c.now()
		c.mu.Unlock()

		metrics.KeySetRefreshes.WithLabelValues("success").Inc()
		metrics.CachedKeys.Set(float64(len(keys)))
		c.logger.InfoContext(ctx, "jwks_refreshed", slog.Int("keys", len(keys)))

		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]*rsa.PublicKey), nil
}
