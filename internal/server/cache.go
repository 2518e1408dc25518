package server

import (
	"sync"
	"time"

	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

// windowCache provides a TTL-based cache of the window enumeration, so
// bursts of tool calls don't re-enumerate on every request.
type windowCache struct {
	mu      sync.Mutex
	windows []model.Window
	readAt  time.Time
	ttl     time.Duration
}

// newWindowCache creates a new cache. A ttl of 0 disables caching.
func newWindowCache(ttl time.Duration) *windowCache {
	return &windowCache{ttl: ttl}
}

// List returns the cached window list if within TTL, otherwise
// enumerates fresh. The caller must hold the provider mutex.
func (c *windowCache) List(dir platform.Directory) ([]model.Window, error) {
	if c.ttl == 0 {
		return dir.ListWindows()
	}

	c.mu.Lock()
	if c.windows != nil && time.Since(c.readAt) < c.ttl {
		windows := c.windows
		c.mu.Unlock()
		return windows, nil
	}
	c.mu.Unlock()

	windows, err := dir.ListWindows()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.windows = windows
	c.readAt = time.Now()
	c.mu.Unlock()

	return windows, nil
}

// Invalidate clears the cache.
func (c *windowCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = nil
}
