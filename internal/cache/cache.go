package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Entry is a cached value and when it was stored
type Entry[V any] struct {
	Value     V
	Timestamp time.Time
}

// TTL is a concurrency-safe cache whose entries expire after a fixed age
type TTL[V any] struct {
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map
}

// NewTTL creates a cache whose entries live for ttl
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{ttl: ttl, now: time.Now}
}

// Key hashes the parts into a cache key so secrets are never used as keys
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the value for key if present and fresh
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.entries.Load(key)
	if !ok {
		return zero, false
	}
	entry := val.(Entry[V])
	if c.ttl > 0 && c.now().Sub(entry.Timestamp) > c.ttl {
		c.entries.Delete(key)
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key
func (c *TTL[V]) Set(key string, value V) {
	c.entries.Store(key, Entry[V]{Value: value, Timestamp: c.now()})
}

// Delete removes key
func (c *TTL[V]) Delete(key string) {
	c.entries.Delete(key)
}

// Clear removes every entry
func (c *TTL[V]) Clear() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
}
