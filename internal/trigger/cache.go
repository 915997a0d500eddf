package trigger

import (
	"sync"
	"time"
)

// CachedSnapshot is the most recent serialized page for a URL.
type CachedSnapshot struct {
	URL      string
	HTML     string
	Received time.Time
}

// SnapshotCache keeps the latest snapshot per URL for a bounded time.
type SnapshotCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	byURL map[string]CachedSnapshot
	now   func() time.Time
}

// NewSnapshotCache creates a cache whose entries expire after ttl.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, byURL: make(map[string]CachedSnapshot), now: time.Now}
}

// Put stores html as the latest snapshot for url and drops expired entries.
func (c *SnapshotCache) Put(url, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, v := range c.byURL {
		if now.Sub(v.Received) > c.ttl {
			delete(c.byURL, k)
		}
	}
	c.byURL[url] = CachedSnapshot{URL: url, HTML: html, Received: now}
}

// Latest returns the unexpired snapshot for url.
func (c *SnapshotCache) Latest(url string) (CachedSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.byURL[url]
	if !ok || c.now().Sub(s.Received) > c.ttl {
		return CachedSnapshot{}, false
	}
	return s, true
}

// Len returns the number of cached entries, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byURL)
}
