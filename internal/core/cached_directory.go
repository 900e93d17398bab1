package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/cache"
	"docsign-backend-go/internal/models"
)

const directoryKeyPrefix = "directory:email:"

func directoryCacheKey(email string) string {
	return directoryKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

type cachedDirectory struct {
	next   Directory
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory caches positive email lookups. Misses are never cached so a
// newly registered account becomes resolvable immediately. Cache errors fall
// through to next. Entries for an email are evicted by a UserService built with
// WithDirectoryCache when the account owning that email changes.
func NewCachedDirectory(next Directory, c cache.Cache, ttl time.Duration, logger *zap.Logger) Directory {
	return &cachedDirectory{next: next, cache: c, ttl: ttl, logger: logger}
}

func (d *cachedDirectory) Resolve(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := directoryCacheKey(email)

	raw, found, err := d.cache.Get(ctx, key)
	if err != nil {
		d.logger.Debug("Directory cache read failed", zap.Error(err))
	} else if found {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
		if err := d.cache.Delete(ctx, key); err != nil {
			d.logger.Debug("Directory cache delete failed", zap.Error(err))
		}
	}

	user, err := d.next.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := d.cache.Set(ctx, key, string(payload), d.ttl); err != nil {
			d.logger.Debug("Directory cache write failed", zap.Error(err))
		}
	}
	return user, nil
}
