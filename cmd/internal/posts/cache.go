package posts

import (
	"sync"
	"time"
)

// Cache defaults.
const (
	DefaultCacheTTL    = 5 * time.Minute
	DefaultCacheShards = 32
)

// CacheConfig configures a Cache.
type CacheConfig struct {
	TTL    time.Duration
	Shards int
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Cache holds per-owner snapshots of post listings.
//
// Each owner key carries a generation counter bumped by Invalidate. A reader
// takes a Ticket with Begin before fetching from the store and hands it back
// to Fill; Fill discards the snapshot if the generation moved in between.
//
// Keys are never evicted except by Invalidate; expired snapshots are dropped
// on read. The key set grows with the number of distinct owners seen.
type Cache struct {
	ttl    time.Duration
	now    func() time.Time
	shards []*cacheShard
}

type cacheShard struct {
	mu    sync.Mutex
	slots map[int64]*cacheSlot
}

type cacheSlot struct {
	gen      uint64
	filled   bool
	posts    []Post
	filledAt time.Time
}

// Ticket is a generation snapshot returned by Begin.
type Ticket struct {
	owner int64
	gen   uint64
}

// NewCache builds a Cache, applying defaults for zero values.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultCacheShards
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	shards := make([]*cacheShard, cfg.Shards)
	for i := range shards {
		shards[i] = &cacheShard{slots: make(map[int64]*cacheSlot)}
	}
	return &Cache{ttl: cfg.TTL, now: cfg.Now, shards: shards}
}

func (c *Cache) shard(owner int64) *cacheShard {
	return c.shards[uint64(owner)%uint64(len(c.shards))] // #nosec G115 -- modulo of a bit pattern.
}

// Get returns a copy of the owner's snapshot if present and younger than TTL.
func (c *Cache) Get(owner int64) ([]Post, bool) {
	sh := c.shard(owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	slot := sh.slots[owner]
	if slot == nil || !slot.filled {
		return nil, false
	}
	if c.now().Sub(slot.filledAt) >= c.ttl {
		slot.filled = false
		slot.posts = nil
		return nil, false
	}
	return clonePosts(slot.posts), true
}

// Begin records the owner's current generation ahead of a store fetch.
func (c *Cache) Begin(owner int64) Ticket {
	sh := c.shard(owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	slot := sh.slots[owner]
	if slot == nil {
		slot = &cacheSlot{}
		sh.slots[owner] = slot
	}
	return Ticket{owner: owner, gen: slot.gen}
}

// Fill stores posts for the ticket's owner unless an invalidation happened
// since Begin. It reports whether the snapshot was stored.
func (c *Cache) Fill(t Ticket, posts []Post) bool {
	sh := c.shard(t.owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	slot := sh.slots[t.owner]
	if slot == nil || slot.gen != t.gen {
		return false
	}
	slot.filled = true
	slot.posts = clonePosts(posts)
	slot.filledAt = c.now()
	return true
}

// Invalidate drops the owner's snapshot and advances its generation.
func (c *Cache) Invalidate(owner int64) {
	sh := c.shard(owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	slot := sh.slots[owner]
	if slot == nil {
		slot = &cacheSlot{}
		sh.slots[owner] = slot
	}
	slot.gen++
	slot.filled = false
	slot.posts = nil
}

// Len returns the number of live (filled, unexpired) snapshots.
func (c *Cache) Len() int {
	now := c.now()
	n := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		for _, slot := range sh.slots {
			if slot.filled && now.Sub(slot.filledAt) < c.ttl {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}
