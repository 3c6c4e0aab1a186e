// ABOUTME: Redis implementation of the KV interface using go-redis
// ABOUTME: Used for hosted/simulator runs where local file storage is unavailable

package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisKV implements KV on a Redis database. All keys live under a fixed
// namespace so several client instances can share one Redis.
type RedisKV struct {
	client    *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewRedisKV connects to Redis at addr and verifies the connection.
// The namespace prefixes every stored key (e.g. "ember:dev1:").
func NewRedisKV(ctx context.Context, addr, namespace string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	logger := slog.Default().With("component", "kvstore")
	logger.Info("redis kv store initialized", "addr", addr, "namespace", namespace)

	return &RedisKV{client: client, namespace: namespace, logger: logger}, nil
}

func (r *RedisKV) key(k string) string {
	return r.namespace + k
}

// Get returns the value for key, or ErrNotFound.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading key %q: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// GetMulti returns the stored values for the given keys; absent keys are omitted.
func (r *RedisKV) GetMulti(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.key(k)
	}

	values, err := r.client.MGet(ctx, namespaced...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			result[keys[i]] = s
		}
	}
	return result, nil
}

// RemoveMulti deletes all the given keys.
func (r *RedisKV) RemoveMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.key(k)
	}
	if err := r.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("removing keys: %w", err)
	}
	return nil
}

// Keys returns every stored key within the namespace, with the namespace stripped.
func (r *RedisKV) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.namespace+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// Close closes the Redis connection.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
