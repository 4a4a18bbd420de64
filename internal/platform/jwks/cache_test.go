// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jwks_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geodrop/internal/platform/jwks"
	"github.com/taibuivan/geodrop/internal/platform/sec"
)

// fakeFetcher serves a mutable key set and counts fetches.
type fakeFetcher struct {
	mu    sync.Mutex
	keys  map[string]*rsa.PublicKey
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.keys, nil
}

func (f *fakeFetcher) set(keys map[string]*rsa.PublicKey, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = keys
	f.err = err
}

func publicKey(t *testing.T) *rsa.PublicKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &key.PublicKey
}

/*
TestCache_TTL verifies that the set is fetched once per TTL window and replaced wholesale.
*/
func TestCache_TTL(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	keyA, keyB := publicKey(t), publicKey(t)

	fetcher := &fakeFetcher{keys: map[string]*rsa.PublicKey{"A": keyA}}
	cache := jwks.NewCache(fetcher, 24*time.Hour, jwks.WithClock(func() time.Time { return now }))

	key, err := cache.Key(context.Background(), "A")
	require.NoError(t, err)
	assert.Same(t, keyA, key)

	_, err = cache.Key(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	// Rotation: A disappears, B appears. Still inside the window.
	fetcher.set(map[string]*rsa.PublicKey{"B": keyB}, nil)
	now = now.Add(23 * time.Hour)

	_, err = cache.Key(context.Background(), "B")
	assert.ErrorIs(t, err, sec.ErrKeyNotFound)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	// Past the window the whole set is replaced.
	now = now.Add(2 * time.Hour)

	key, err = cache.Key(context.Background(), "B")
	require.NoError(t, err)
	assert.Same(t, keyB, key)
	assert.Equal(t, int32(2), fetcher.calls.Load())

	_, err = cache.Key(context.Background(), "A")
	assert.ErrorIs(t, err, sec.ErrKeyNotFound)
	assert.Equal(t, 1, cache.Len())
}

/*
TestCache_FetchFailure verifies that a failed fetch reports KeyNotFound and is retried next call.
*/
func TestCache_FetchFailure(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	keyA := publicKey(t)

	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	cache := jwks.NewCache(fetcher, time.Hour, jwks.WithClock(func() time.Time { return now }))

	_, err := cache.Key(context.Background(), "A")
	assert.ErrorIs(t, err, sec.ErrKeyNotFound)

	fetcher.set(map[string]*rsa.PublicKey{"A": keyA}, nil)

	key, err := cache.Key(context.Background(), "A")
	require.NoError(t, err)
	assert.Same(t, keyA, key)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

/*
TestCache_StaleSetKeptOnFailure verifies that a failed refresh leaves the old set in place.
*/
func TestCache_StaleSetKeptOnFailure(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	keyA := publicKey(t)

	fetcher := &fakeFetcher{keys: map[string]*rsa.PublicKey{"A": keyA}}
	cache := jwks.NewCache(fetcher, time.Hour, jwks.WithClock(func() time.Time { return now }))

	_, err := cache.Key(context.Background(), "A")
	require.NoError(t, err)

	fetcher.set(nil, errors.New("provider down"))
	now = now.Add(2 * time.Hour)

	_, err = cache.Key(context.Background(), "A")
	assert.ErrorIs(t, err, sec.ErrKeyNotFound)
	assert.Equal(t, 1, cache.Len())
}

/*
TestCache_ConcurrentRefresh verifies that concurrent stale lookups share one fetch.
*/
func TestCache_ConcurrentRefresh(t *testing.T) {
	keyA := publicKey(t)
	fetcher := &fakeFetcher{keys: map[string]*rsa.PublicKey{"A": keyA}, delay: 50 * time.Millisecond}
	cache := jwks.NewCache(fetcher, time.Hour)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := cache.Key(context.Background(), "A")
			assert.NoError(t, err)
			assert.Same(t, keyA, key)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

/*
TestCache_CancelledCaller verifies that the fetch outlives a cancelled first caller.
*/
func TestCache_CancelledCaller(t *testing.T) {
	keyA := publicKey(t)
	fetcher := &fakeFetcher{keys: map[string]*rsa.PublicKey{"A": keyA}}
	cache := jwks.NewCache(fetcher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key, err := cache.Key(ctx, "A")
	require.NoError(t, err)
	assert.Same(t, keyA, key)
}
