package repository

import (
	"context"
	"time"
)

// CacheRepository stores serialized calculation results by key. Misses and
// backend failures both report ok=false.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
