// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/constants"
)

// # Count Cache

// RedisCountCache implements [CountCache] using Redis.
type RedisCountCache struct {
	client *redis.Client
}

// NewCountCache creates a new Redis-backed [CountCache].
func NewCountCache(client *redis.Client) *RedisCountCache {
	return &RedisCountCache{client: client}
}

func countKey(ownerID string) string {
	return constants.RedisPrefixRecipeCount + ownerID
}

/*
Get returns the cached count for ownerID.

Description: Returns apperr.NotFound on a cache miss.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - int64: Cached count
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisCountCache) Get(context context.Context, ownerID string) (int64, error) {
	count, err := cache.client.Get(context, countKey(ownerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperr.NotFound("Recipe count")
		}
		return 0, fmt.Errorf("redis_recipe_count_get_failed: %w", err)
	}

	return count, nil
}

/*
Set stores the count for ownerID with the given TTL.
*/
func (cache *RedisCountCache) Set(context context.Context, ownerID string, count int64, ttl time.Duration) error {
	if err := cache.client.Set(context, countKey(ownerID), count, ttl).Err(); err != nil {
		return fmt.Errorf("redis_recipe_count_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops the cached count for ownerID.
*/
func (cache *RedisCountCache) Invalidate(context context.Context, ownerID string) error {
	if err := cache.client.Del(context, countKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis_recipe_count_invalidate_failed: %w", err)
	}

	return nil
}
