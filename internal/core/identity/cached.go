package identity

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/kv"
)

const (
	cacheNamespace = "identity"
	cacheKey       = "user"
)

// CachedProvider serves the user from the KV store while the cached entry is
// fresh and falls through to the wrapped provider otherwise.
type CachedProvider struct {
	next  Provider
	cache *kv.TypedKV[User]
	ttl   time.Duration
	log   zerolog.Logger
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps next with a KV cache. A non-positive ttl disables
// caching.
func NewCachedProvider(next Provider, store kv.KV, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: kv.Scoped[User](store, cacheNamespace),
		ttl:   ttl,
		log:   log,
	}
}

func (c *CachedProvider) CurrentUser(ctx context.Context) (User, error) {
	if c.ttl > 0 {
		if u, err := c.cache.Get(ctx, cacheKey); err == nil {
			return u, nil
		}
	}

	u, err := c.next.CurrentUser(ctx)
	if err != nil {
		return User{}, err
	}

	if c.ttl > 0 {
		if err := c.cache.SetTTL(ctx, cacheKey, u, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("failed to cache identity")
		}
	}
	return u, nil
}

func (c *CachedProvider) Available(ctx context.Context) bool {
	return c.next.Available(ctx)
}

// Logout drops the cached user and ends the remote session.
func (c *CachedProvider) Logout(ctx context.Context) error {
	if err := c.cache.Delete(ctx, cacheKey); err != nil {
		c.log.Warn().Err(err).Msg("failed to drop cached identity")
	}
	return c.next.Logout(ctx)
}
