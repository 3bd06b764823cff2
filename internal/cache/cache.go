/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"

	"github.com/minitug/reckon/config"
	redis_db "github.com/minitug/reckon/internal/redis-db"
)

// Cache holds short-lived reporting aggregates so repeated dashboard polls
// don't recompute the overview on every request. Entries are invalidated
// whenever a reconciliation run persists or the store is reset.
type Cache interface {
	// Set stores a value under key for the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get loads a value into data. A cache miss is not an error; data is
	// left untouched.
	Get(ctx context.Context, key string, data interface{}) error

	// Delete drops a key.
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on Redis with a local TinyLFU front.
type RedisCache struct {
	cache *cache.Cache
}

// NewCache connects to the configured Redis instance.
func NewCache() (Cache, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	return NewCacheWithAddresses([]string{fmt.Sprintf("redis://%s", cfg.Redis.Dns)})
}

// cacheSize is the local cache capacity in entries.
const cacheSize = 10000

// NewCacheWithAddresses builds a cache against explicit Redis addresses.
// Exposed so tests can point it at an embedded server.
func NewCacheWithAddresses(addresses []string) (*RedisCache, error) {
	client, err := redis_db.NewRedisClient(addresses)
	if err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client.Client(),
		LocalCache: cache.NewTinyLFU(cacheSize, 1*time.Minute),
	})

	return &RedisCache{cache: c}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	err := r.cache.Get(ctx, key, &data)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}

	return err
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
