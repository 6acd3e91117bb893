package catalog

import (
	"slices"
	"sync"
	"time"

	"sermonfeed/internal/video"
)

// DefaultTTL is how long a loaded category is served without refetching.
const DefaultTTL = 2 * time.Minute

// Clock returns the current time.
type Clock func() time.Time

type cacheEntry struct {
	videos    []video.Record
	fetchedAt time.Time
}

// Cache holds the decoded videos of each category for a fixed TTL.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[video.Type]cacheEntry
	gen     uint64 // bumped by Clear
}

// NewCache creates a Cache. A zero ttl means DefaultTTL and a nil clock means
// time.Now.
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[video.Type]cacheEntry),
	}
}

// Get returns a copy of the stored videos if they were fetched less than one
// TTL ago.
func (c *Cache) Get(key video.Type) ([]video.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock().Before(e.fetchedAt.Add(c.ttl)) {
		delete(c.entries, key)
		return nil, false
	}
	return slices.Clone(e.videos), true
}

// StoreIfCurrent stores videos under key, stamped with the current time,
// unless Clear was called since gen was read from Generation. It reports
// whether the videos were stored.
func (c *Cache) StoreIfCurrent(key video.Type, videos []video.Record, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.entries[key] = cacheEntry{videos: slices.Clone(videos), fetchedAt: c.clock()}
	return true
}

// Generation identifies the current contents. It changes on every Clear.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.gen++
}

func (c *Cache) Now() time.Time {
	return c.clock()
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
