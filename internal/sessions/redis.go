package sessions

import (
	"context"
	"errors"
	"fmt"
	"stickynotes/internal/config"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStorage implements fiber.Storage on top of a go-redis client. Every
// key is namespaced with prefix so Reset only touches session data.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to Redis and checks the connection.
func NewRedisStorage(ctx context.Context, cfg config.RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	return &RedisStorage{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStorage) key(k string) string {
	return s.prefix + k
}

// Get returns nil, nil for a missing key, as fiber.Storage requires.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.client.Get(context.Background(), s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	if err := s.client.Set(context.Background(), s.key(key), val, exp).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(context.Background(), s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Reset deletes every key under the storage prefix.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis reset: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis reset: %w", err)
		}
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
