// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
)

func newRedisRepository(t *testing.T) (*RedisUserRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisUserRepository(client), server
}

/*
TestRedisUserRepository_RoundTrip verifies create, exists and lookup on a user hash.
*/
func TestRedisUserRepository_RoundTrip(t *testing.T) {
	repository, server := newRedisRepository(t)
	ctx := context.Background()

	exists, err := repository.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repository.Upsert(ctx, &User{ID: "u1", Attributes: map[string]string{"name": "Ann"}}))

	exists, err = repository.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "Ann", server.HGet("user:u1", "name"))
	assert.Equal(t, "u1", server.HGet("user:u1", "id"))

	user, err := repository.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, map[string]string{"name": "Ann"}, user.Attributes)
}

/*
TestRedisUserRepository_UpsertMerges verifies last-write-wins per field.
*/
func TestRedisUserRepository_UpsertMerges(t *testing.T) {
	repository, _ := newRedisRepository(t)
	ctx := context.Background()

	require.NoError(t, repository.Upsert(ctx, &User{ID: "u1", Attributes: map[string]string{"name": "Ann", "city": "Oslo"}}))
	require.NoError(t, repository.Upsert(ctx, &User{ID: "u1", Attributes: map[string]string{"name": "Anna"}}))

	user, err := repository.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Anna", "city": "Oslo"}, user.Attributes)
}

/*
TestRedisUserRepository_NotFound verifies the typed miss and store failures.
*/
func TestRedisUserRepository_NotFound(t *testing.T) {
	repository, server := newRedisRepository(t)

	_, err := repository.FindByID(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))

	server.Close()
	_, err = repository.Exists(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
}
