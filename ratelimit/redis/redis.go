package redislimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit configures a named bucket: at most Limit allowances per Window.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter is a fixed-window rate limiter backed by Redis INCR + EXPIRE, so
// limits hold across instances. Fails open on Redis errors; the adapter
// treats a limiter error the same way.
type Limiter struct {
	rdb    *redis.Client
	limits map[string]Limit
}

func New(rdb *redis.Client, limits map[string]Limit) *Limiter {
	return &Limiter{rdb: rdb, limits: limits}
}

func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	lim, ok := l.limits[bucket]
	if !ok {
		lim, ok = l.limits["default"]
	}
	if !ok || lim.Limit <= 0 || lim.Window <= 0 {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		// First hit opens the window.
		_ = l.rdb.Expire(ctx, key, lim.Window).Err()
	}
	return n <= int64(lim.Limit), nil
}
