package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/models"
)

// RedisStore keeps profiles under "profile:<key>" with a sliding TTL.
type RedisStore struct {
	conn *redis.Client
	ttl  time.Duration
}

func NewRedisStore(conn *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{conn: conn, ttl: ttl}
}

func redisKey(key string) string {
	return "profile:" + key
}

func (s *RedisStore) Load(ctx context.Context, key string) (models.User, error) {
	raw, err := s.conn.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("redis get profile: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, fmt.Errorf("decode profile %s: %w", key, err)
	}
	if s.ttl > 0 {
		s.conn.Expire(ctx, redisKey(key), s.ttl)
	}
	return u, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.conn.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.conn.Del(ctx, redisKey(key)).Err()
}
