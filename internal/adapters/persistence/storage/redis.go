// Package storage provides fiber.Storage backends for sessions and the
// login rate limiter.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds each storage call; fiber.Storage carries no context.
const opTimeout = 3 * time.Second

// RedisStorage implements fiber.Storage on a Redis key prefix.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage creates a storage namespaced under prefix
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// Get returns nil, nil for a missing key
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val; exp <= 0 keeps the key without expiry
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if exp < 0 {
		exp = 0
	}
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset removes every key under the prefix
func (s *RedisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 200 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return s.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Close is a no-op; the client is owned by the caller
func (s *RedisStorage) Close() error {
	return nil
}
