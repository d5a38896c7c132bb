// Package cache holds short-lived keys: resend cooldowns and failed-login
// counters. Redis backs it when configured, otherwise an in-process map.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// SetNX stores key for ttl unless it already exists and reports whether
	// it was stored.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Incr increments key and starts its ttl on the first increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
