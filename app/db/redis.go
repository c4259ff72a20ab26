package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const prefixLookup = "lookup:"

// RedisCache implements Cache for redis
type RedisCache struct {
	db  *redis.Client
	ttl time.Duration
}

// Get values from redis
func (s *RedisCache) Get(ctx context.Context, key Key) ([]string, error) {
	data, err := s.db.Get(ctx, prefixLookup+key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching values: %w", err)
	}
	var values []string
	if jerr := json.Unmarshal([]byte(data), &values); jerr != nil {
		return nil, fmt.Errorf("unmarshal values: %w", jerr)
	}
	return values, nil
}

// Save values to redis
func (s *RedisCache) Save(ctx context.Context, key Key, values []string) error {
	jdata, jerr := json.Marshal(values)
	if jerr != nil {
		return fmt.Errorf("marshal values: %w", jerr)
	}
	if err := s.db.Set(ctx, prefixLookup+key.String(), string(jdata), s.ttl).Err(); err != nil {
		return fmt.Errorf("saving values: %w", err)
	}
	return nil
}

// NewRedisCache creates RedisCache with given url
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{db: rdb, ttl: ttl}, nil
}
