// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/constants"
)

// RedisUserRepository implements [UserRepository] with one hash per user.
type RedisUserRepository struct {
	client redis.UniversalClient
}

// NewRedisUserRepository creates a new Redis-backed UserRepository.
func NewRedisUserRepository(client redis.UniversalClient) *RedisUserRepository {
	return &RedisUserRepository{client: client}
}

func userKey(id string) string {
	return constants.RedisPrefixUser + id
}

/*
Upsert writes every field of the user into its hash.

HSET only touches the fields it is given, so a repeated sign-up merges into
the existing record.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Execution errors
*/
func (repository *RedisUserRepository) Upsert(context context.Context, user *User) error {
	if err := repository.client.HSet(context, userKey(user.ID), user.Fields()).Err(); err != nil {
		return fmt.Errorf("redis_user_upsert_failed: %w", err)
	}
	return nil
}

// Exists reports whether the user hash is present.
func (repository *RedisUserRepository) Exists(context context.Context, id string) (bool, error) {
	count, err := repository.client.Exists(context, userKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_user_exists_failed: %w", err)
	}
	return count > 0, nil
}

/*
FindByID loads the user hash.

Description: Returns apperr.NotFound when the hash is absent.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Loaded user
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisUserRepository) FindByID(context context.Context, id string) (*User, error) {
	fields, err := repository.client.HGetAll(context, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_user_find_failed: %w", err)
	}

	// HGETALL answers an empty map for a missing key.
	if len(fields) == 0 {
		return nil, apperr.NotFound("User")
	}

	return newUser(id, fields), nil
}
