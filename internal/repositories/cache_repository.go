package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface isolates the short-TTL lookup cache so it
// can be swapped for a no-op without touching service logic. Cached
// values are never authoritative for correctness decisions.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}
