// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package point

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/pkg/slice"
)

// RedisStore implements [Store] with an expiring hash per point and one GEO set.
type RedisStore struct {
	client   redis.UniversalClient
	indexKey string
}

// NewRedisStore creates a new Redis-backed point Store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, indexKey: constants.RedisKeyPointIndex}
}

func pointKey(id string) string {
	return constants.RedisPrefixPoint + id
}

/*
Save writes the record, its expiry and its index entry in one MULTI/EXEC block.

Description: Readers never see the index entry of a record that has not been
written yet. Index entries outliving their record are repaired by queries.

Parameters:
  - context: context.Context
  - point: *Point

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Save(context context.Context, point *Point) error {
	key := pointKey(point.ID)

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key, point.Fields())
		pipe.ExpireAt(context, key, point.ExpiresAt)
		pipe.GeoAdd(context, store.indexKey, &redis.GeoLocation{
			Name:      point.ID,
			Longitude: point.Longitude,
			Latitude:  point.Latitude,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_point_save_failed: %w", err)
	}

	return nil
}

// WithinRadius runs a read-only radius search over the geo index.
func (store *RedisStore) WithinRadius(context context.Context, latitude, longitude, radiusMeters float64) ([]string, error) {
	locations, err := store.client.GeoRadius(context, store.indexKey, longitude, latitude, &redis.GeoRadiusQuery{
		Radius: radiusMeters,
		Unit:   "m",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_point_radius_failed: %w", err)
	}

	return slice.Map(locations, func(location redis.GeoLocation) string { return location.Name }), nil
}

// Exists reports whether the record hash is still present.
func (store *RedisStore) Exists(context context.Context, id string) (bool, error) {
	count, err := store.client.Exists(context, pointKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_point_exists_failed: %w", err)
	}
	return count > 0, nil
}

/*
Find loads the record hash.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Point: Decoded point with numeric coordinates
  - error: apperr.NotFound, ErrCorruptRecord or connectivity errors
*/
func (store *RedisStore) Find(context context.Context, id string) (*Point, error) {
	fields, err := store.client.HGetAll(context, pointKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_point_find_failed: %w", err)
	}

	// Expired between EXISTS and HGETALL.
	if len(fields) == 0 {
		return nil, apperr.NotFound("Point")
	}

	return fromFields(id, fields)
}

// Unindex removes the id from the geo set.
func (store *RedisStore) Unindex(context context.Context, id string) error {
	if err := store.client.ZRem(context, store.indexKey, id).Err(); err != nil {
		return fmt.Errorf("redis_point_unindex_failed: %w", err)
	}
	return nil
}
