package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "analysis:"

// Redis is an AnalysisCache shared between instances
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the server at url (redis://host:port/db)
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func key(predictionID uint) string {
	return keyPrefix + strconv.FormatUint(uint64(predictionID), 10)
}

func (r *Redis) Get(ctx context.Context, predictionID uint) (*Entry, error) {
	raw, err := r.client.Get(ctx, key(predictionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key(predictionID), err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// unreadable entries are treated as misses and overwritten
		return nil, nil
	}
	return &e, nil
}

func (r *Redis) Set(ctx context.Context, predictionID uint, e *Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := r.client.Set(ctx, key(predictionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key(predictionID), err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, predictionID uint) error {
	if err := r.client.Del(ctx, key(predictionID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key(predictionID), err)
	}
	return nil
}

// Close releases the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
