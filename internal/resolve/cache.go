package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/tiksave/backend/internal/models"
)

type cacheEntry struct {
	record  models.VideoRecord
	expires time.Time
}

// CachingProvider wraps another Provider with a TTL-based in-memory cache
// so repeat resolutions of the same link do not re-hit the upstream quota.
type CachingProvider struct {
	base Provider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingProvider returns a Provider that caches lookups for the provided TTL.
func NewCachingProvider(base Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Resolve returns a cached record when available, otherwise delegates to
// the underlying provider and stores the result. Failed lookups are never
// cached.
func (c *CachingProvider) Resolve(ctx context.Context, url string) (models.VideoRecord, error) {
	if c == nil || c.base == nil {
		return models.VideoRecord{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[url]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.record, nil
	}

	record, err := c.base.Resolve(ctx, url)
	if err != nil {
		return models.VideoRecord{}, err
	}

	c.mu.Lock()
	c.items[url] = cacheEntry{record: record, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return record, nil
}

var _ Provider = (*CachingProvider)(nil)
