// Package querycache keeps server state on the client: entries are keyed by
// a scope key, go stale after a per-query duration and can be invalidated by
// key prefix. Concurrent fetches of the same key share one call.
package querycache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Forever marks data that never goes stale on its own.
const Forever time.Duration = -1

// Key identifies a query, e.g. {"otherMaster", "list", "12"}.
type Key []string

func (k Key) String() string { return strings.Join(k, "\x1f") }

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	loaded    bool
	fetchedAt time.Time
	staleTime time.Duration
	invalid   bool
	// gen changes on every invalidation. A fetch only stores its result
	// when the generation it started under is still current.
	gen uint64
}

func (e *entry) fresh(now time.Time) bool {
	if !e.loaded || e.invalid {
		return false
	}
	if e.staleTime == Forever {
		return true
	}
	return now.Sub(e.fetchedAt) < e.staleTime
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	gen     uint64
	now     func() time.Time
}

func (c *Cache) nextGen() uint64 {
	c.gen++
	return c.gen
}

func New() *Cache {
	return &Cache{entries: map[string]*entry{}, now: time.Now}
}

// Fetch returns the cached value for key while it is fresh, otherwise it
// calls fetch and stores the result. Errors are not cached.
func Fetch[V any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	id := key.String()

	c.mu.Lock()
	e, ok := c.entries[id]
	if ok && e.fresh(c.now()) {
		v, ok := e.value.(V)
		c.mu.Unlock()
		if !ok {
			return zero, fmt.Errorf("cached value for %v has type %T", []string(key), e.value)
		}
		return v, nil
	}
	if !ok {
		e = &entry{key: append(Key(nil), key...), gen: c.nextGen()}
		c.entries[id] = e
	}
	gen := e.gen
	c.mu.Unlock()

	res, err, _ := c.group.Do(id+"\x1e"+strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if cur, ok := c.entries[id]; ok && cur.gen == gen {
			cur.value = v
			cur.loaded = true
			cur.invalid = false
			cur.fetchedAt = c.now()
			cur.staleTime = staleTime
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, ok := res.(V)
	if !ok {
		return zero, fmt.Errorf("fetched value for %v has type %T", []string(key), res)
	}
	return v, nil
}

// Peek returns the cached value regardless of staleness.
func Peek[V any](c *Cache, key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.entries[key.String()]
	if !ok || !e.loaded {
		return zero, false
	}
	v, ok := e.value.(V)
	return v, ok
}

// Invalidate marks every entry under prefix stale so the next Fetch goes to
// the server. Fetches already in flight for those keys no longer store their
// result, and later fetches do not join them. It returns the number of cached
// entries affected.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.invalid = true
		e.gen = c.nextGen()
		if e.loaded {
			n++
		}
	}
	return n
}

// Remove drops every entry under prefix.
func (c *Cache) Remove(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, id)
		}
	}
}

// Stale reports whether key would trigger a fetch.
func (c *Cache) Stale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	return !ok || !e.fresh(c.now())
}
