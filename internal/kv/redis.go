package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// state:{namespace} - hash of key -> JSON value
const keyState = "state:%s"

// implements Store as a Redis hash
type RedisStore struct {
	client *redis.Client
	key    string
}

func (s *RedisStore) Write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("value is not JSON encodable: %w", err)
	}

	if err := s.client.HSet(ctx, s.key, key, data).Err(); err != nil {
		return fmt.Errorf("failed to write key to redis: %w", err)
	}

	return nil
}

func (s *RedisStore) Read(ctx context.Context, key string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read key from redis: %w", err)
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, fmt.Errorf("failed to decode value for %q: %w", key, err)
	}

	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.HDel(ctx, s.key, key).Err()
}

func (s *RedisStore) ReadAll(ctx context.Context) (map[string]any, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read state from redis: %w", err)
	}

	out := make(map[string]any, len(raw))
	for k, data := range raw {
		var v any
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to decode value for %q: %w", k, err)
		}
		out[k] = v
	}

	return out, nil
}

func (s *RedisStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys from redis: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// opens Redis-backed stores
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// creates a Redis backend from a URL and verifies the connection
func NewRedisBackendFromURL(redisURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{client: client}, nil
}

func (b *RedisBackend) Open(_ context.Context, namespace string) (Store, error) {
	return &RedisStore{client: b.client, key: fmt.Sprintf(keyState, namespace)}, nil
}

func (b *RedisBackend) Drop(ctx context.Context, namespace string) error {
	return b.client.Del(ctx, fmt.Sprintf(keyState, namespace)).Err()
}

// returns the underlying Redis client
func (b *RedisBackend) Client() *redis.Client {
	return b.client
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
