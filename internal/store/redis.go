package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mvasquez/persona-sim/internal/model/simulation"
)

// keyPrefix namespaces simulation state inside a shared Redis instance.
const keyPrefix = "simulation:"

// RedisStore persists sessions as JSON values with per-key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance described by url
// (redis://host:port form) and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get retrieves and deserializes the session stored at id.
func (s *RedisStore) Get(ctx context.Context, id string) (simulation.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return simulation.Session{}, ErrNotFound
	}
	if err != nil {
		return simulation.Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	var session simulation.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return simulation.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

// Put serializes the session and writes it with a fresh expiry.
func (s *RedisStore) Put(ctx context.Context, id string, session simulation.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("write session %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
