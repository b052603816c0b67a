package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "quickread:"
	redisScanCount   = 100
	redisPingTimeout = 5 * time.Second
)

// Redis stores every key under a fixed namespace prefix.
type Redis struct {
	client *redis.Client
}

// NewRedis parses url, connects and verifies connectivity.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err = client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), client.Close())
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}

	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}

	return nil
}

func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(redisKeyPrefix+prefix) + "*"

	var (
		keys   []string
		seen   = make(map[string]struct{})
		cursor uint64
	)
	// SCAN may return a key more than once.
	for {
		page, next, err := r.client.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return nil, &Error{Op: "keys", Key: prefix, Err: err}
		}

		for _, key := range page {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, strings.TrimPrefix(key, redisKeyPrefix))
		}

		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
