package scanner

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pageguard/pageguard/internal/model"
)

// DecisionCache memoises prior decisions keyed by content hash (text)
// or source-URL hash (images). Collisions are tolerated: the worst
// outcome is one suppressed scan for an unrelated string.
type DecisionCache struct {
	cache   *gocache.Cache
	enabled bool
}

// NewDecisionCache creates the cache
func NewDecisionCache(cfg model.CacheConfig) *DecisionCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	return &DecisionCache{
		cache:   gocache.New(ttl, cleanup),
		enabled: cfg.Enabled,
	}
}

func cacheKey(kind model.NodeKind, hash uint64) string {
	prefix := "t"
	if kind == model.KindImage {
		prefix = "i"
	}
	return fmt.Sprintf("%s:%016x", prefix, hash)
}

// Get returns a copy of the cached decision
func (c *DecisionCache) Get(kind model.NodeKind, hash uint64) (model.Decision, bool) {
	if !c.enabled {
		return model.Decision{}, false
	}
	v, ok := c.cache.Get(cacheKey(kind, hash))
	if !ok {
		return model.Decision{}, false
	}
	return v.(model.Decision), true
}

// Set records a decision. An unsafe decision is never downgraded: a
// later safe verdict for the same key is dropped.
func (c *DecisionCache) Set(kind model.NodeKind, hash uint64, d model.Decision) {
	if !c.enabled {
		return
	}
	key := cacheKey(kind, hash)
	if prev, ok := c.cache.Get(key); ok {
		if pd := prev.(model.Decision); pd.ShouldMitigate() && !d.ShouldMitigate() {
			return
		}
	}
	c.cache.SetDefault(key, d)
}

// Clear drops every cached decision (scanner teardown)
func (c *DecisionCache) Clear() {
	c.cache.Flush()
}
