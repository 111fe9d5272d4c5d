package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"kata_lens/internal/model"
)

// RedisKVStore keeps each collection as one redis string without expiry.
type RedisKVStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisKVStore parses url (redis://...) and pings the server.
func NewRedisKVStore(ctx context.Context, url string, logger *slog.Logger) (*RedisKVStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w: %v", model.ErrStorageUnavailable, err)
	}
	return NewRedisKVStoreFromClient(client, logger), nil
}

// NewRedisKVStoreFromClient wraps an already configured redis client.
func NewRedisKVStoreFromClient(client *redis.Client, logger *slog.Logger) *RedisKVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisKVStore{client: client, logger: logger}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Redis GET failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("read %s: %w: %v", key, model.ErrStorageUnavailable, err)
	}
	return val, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.logger.ErrorContext(ctx, "Redis SET failed", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("write %s: %w: %v", key, model.ErrStorageUnavailable, err)
	}
	return nil
}

// Ping is used by the health check.
func (s *RedisKVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisKVStore) Close() error {
	return s.client.Close()
}
