package identity

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	id      string
	expires time.Time
}

// CachingDirectory wraps another Directory with a TTL-based in-memory cache
// for username resolution. Reverse lookups pass through uncached since they
// feed display output where staleness is more visible.
type CachingDirectory struct {
	base Directory
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingDirectory returns a Directory that caches Resolve results for the
// provided TTL.
func NewCachingDirectory(base Directory, ttl time.Duration) *CachingDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingDirectory{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Resolve returns the cached account id when available, otherwise it
// delegates to the underlying directory and stores the result. Misses are
// not negatively cached; an unknown username is re-checked every call.
func (c *CachingDirectory) Resolve(ctx context.Context, username string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[username]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.id, nil
	}

	id, err := c.base.Resolve(ctx, username)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.items[username] = cacheEntry{id: id, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return id, nil
}

// Usernames delegates directly to the underlying directory.
func (c *CachingDirectory) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	return c.base.Usernames(ctx, ids)
}

var _ Directory = (*CachingDirectory)(nil)
