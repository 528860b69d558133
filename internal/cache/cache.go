// Package cache provides the process-scoped state used by the AI
// suggestion proxy: a TTL cache for upstream responses and a per-actor
// cooldown gate. Both are plain dependencies with explicit operations —
// nothing in here is a package-level global.
package cache

import (
	"sync"
	"time"
)

// TTL is a mutex-guarded string cache with per-entry expiry. Expired
// entries are invisible to Get but kept until overwritten or expired
// explicitly, so GetStale can serve them as a fallback.
type TTL struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]ttlEntry
	now     func() time.Time
}

type ttlEntry struct {
	value     string
	expiresAt time.Time
}

// NewTTL creates a cache whose entries live for ttl after each Set.
func NewTTL(ttl time.Duration) *TTL {
	return &TTL{
		ttl:     ttl,
		entries: make(map[string]ttlEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it has not expired.
func (c *TTL) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// GetStale returns the cached value for key even if it has expired.
func (c *TTL) GetStale(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// Set stores value under key with a fresh TTL.
func (c *TTL) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Expire removes key immediately.
func (c *TTL) Expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cooldown tracks the last time each key performed a guarded action and
// enforces a minimum interval between actions.
type Cooldown struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewCooldown creates a gate requiring interval between actions per key.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Reserve records an action for key if the cooldown has elapsed and
// returns (0, true). Otherwise it returns the remaining wait and false.
// The timestamp is recorded before the guarded action runs, so concurrent
// hits are debounced too.
func (c *Cooldown) Reserve(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if last, ok := c.last[key]; ok {
		if wait := c.interval - now.Sub(last); wait > 0 {
			return wait, false
		}
	}
	c.last[key] = now
	return 0, true
}
