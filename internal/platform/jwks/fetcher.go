// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jwks

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sony/gobreaker/v2"

	"github.com/taibuivan/geodrop/internal/platform/metrics"
)

// maxKeySetBytes caps the size of a key set response body.
const maxKeySetBytes = 1 << 20

// ErrNoUsableKeys is returned when the provider answers with no RSA keys carrying a kid.
var ErrNoUsableKeys = errors.New("jwks: key set contains no usable RSA keys")

// HTTPFetcher downloads the provider key set over HTTP behind a circuit breaker.
type HTTPFetcher struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher for the given JWKS URL.
// A nil client falls back to [http.DefaultClient].
func NewHTTPFetcher(url string, client *http.Client, logger *slog.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	settings := gobreaker.Settings{
		Name:        "idp-jwks",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.KeySetBreakerState.Set(stateToFloat(to))
		},
	}

	return &HTTPFetcher{
		url:     url,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
	}
}

// Fetch downloads and parses the key set. Keys that are not RSA or carry no
// kid are skipped.
func (f *HTTPFetcher) Fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.download(ctx)
	})
	if err != nil {
		return nil, err
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("jwks: failed to parse key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, set.Len())
	for index := 0; index < set.Len(); index++ {
		key, ok := set.Key(index)
		if !ok || key.KeyID() == "" {
			continue
		}

		var publicKey rsa.PublicKey
		if err := key.Raw(&publicKey); err != nil {
			f.logger.DebugContext(ctx, "jwks_key_skipped",
				slog.String("kid", key.KeyID()),
				slog.String("kty", key.KeyType().String()),
			)
			continue
		}
		keys[key.KeyID()] = &publicKey
	}

	if len(keys) == 0 {
		return nil, ErrNoUsableKeys
	}
	return keys, nil
}

func (f *HTTPFetcher) download(ctx context.Context) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("jwks: create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := f.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("jwks: request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks: unexpected status %d", response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("jwks: read body: %w", err)
	}
	return body, nil
}

// stateToFloat maps gobreaker states to gauge values.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
