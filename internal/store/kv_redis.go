package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend. URL takes precedence over
// Addr when both are set.
type RedisOptions struct {
	URL      string
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisKV implements KV on a Redis server. Keys are laid out as
// <prefix>:<user>:<key>.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV connects to Redis and verifies the connection with PING.
func NewRedisKV(ctx context.Context, opts RedisOptions) (*RedisKV, error) {
	var ropts *redis.Options
	if opts.URL != "" {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		ropts = parsed
	} else {
		ropts = &redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}
	}

	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return newRedisKV(client, opts.Prefix), nil
}

func newRedisKV(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "studybuddy"
	}
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) key(user, key string) string {
	return r.prefix + ":" + user + ":" + key
}

func (r *RedisKV) Get(ctx context.Context, user, key string) ([]byte, error) {
	if err := checkKey(user, key); err != nil {
		return nil, err
	}
	b, err := r.client.Get(ctx, r.key(user, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", user, key, err)
	}
	return b, nil
}

func (r *RedisKV) Set(ctx context.Context, user, key string, blob []byte) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(user, key), blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", user, key, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, user, key string) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(user, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", user, key, err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
