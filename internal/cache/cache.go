package cache

import (
	"context"
	"time"
)

// Cache is a small string key/value store with expiry.
type Cache interface {
	// Get returns found=false when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
