// Package cache memoizes repeal verdicts. It is a pure performance layer:
// the pipeline behaves identically whether the cache is present, empty, or
// disabled, because keys incorporate the corpus version and threshold
// configuration, so a stale verdict can never be served.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/poleguard/repeal/internal/engine"
)

// DefaultTTL bounds how long a verdict stays cached when the caller does
// not specify a TTL.
const DefaultTTL = time.Hour

type entry struct {
	verdict   engine.Verdict
	expiresAt time.Time
}

// Cache is an in-memory TTL verdict cache, safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with the given default TTL; non-positive uses
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached verdict for key, if present and unexpired.
func (c *Cache) Get(key string) (engine.Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return engine.Verdict{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return engine.Verdict{}, false
	}
	return e.verdict, true
}

// Set stores a verdict under key. A non-positive ttl uses the cache default.
func (c *Cache) Set(key string, v engine.Verdict, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{verdict: v, expiresAt: c.now().Add(ttl)}
}

// Invalidate removes every entry whose key begins with prefix. An empty
// prefix clears the cache.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of live entries, counting expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// VerdictKey builds the cache key for a decision: a hash of the infraction
// text, the corpus version (its last-updated timestamp), and the serialized
// threshold configuration. Any corpus mutation or threshold change yields a
// new key.
func VerdictKey(infractionText string, corpusUpdated time.Time, cfg engine.ThresholdConfig) string {
	cfgJSON, _ := json.Marshal(cfg)

	h := sha256.New()
	h.Write([]byte(infractionText))
	h.Write([]byte{0})
	h.Write([]byte(corpusUpdated.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{0})
	h.Write(cfgJSON)
	return "verdict:" + hex.EncodeToString(h.Sum(nil))
}
