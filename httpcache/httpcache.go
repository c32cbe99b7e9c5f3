// Package httpcache keeps raw HTTP response bodies in memory, so repeated lookups don't hit remote services again.
package httpcache

import (
	"context"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultSize is the number of responses kept when no size is given.
const DefaultSize = 64

type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache is a bounded in-memory cache of response bodies. When full, the least recently used entry goes.
// Concurrent fetches of the same key are merged into one. A nil *Cache is valid and caches nothing.
type Cache struct {
	size int

	mu      sync.Mutex
	entries *orderedmap.OrderedMap[string, []byte]

	inFlight   map[string]*call
	inFlightMu sync.Mutex
}

type call struct {
	done chan struct{}
	body []byte
	err  error
}

func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		size:     size,
		entries:  orderedmap.New[string, []byte](),
		inFlight: make(map[string]*call),
	}
}

// Get returns the cached body for key, marking it as recently used.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries.Get(key)
	if ok {
		// move to the back
		c.entries.Delete(key)
		c.entries.Set(key, body)
	}
	return body, ok
}

func (c *Cache) Set(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Delete(key)
	c.entries.Set(key, body)
	for c.entries.Len() > c.size {
		c.entries.Delete(c.entries.Oldest().Key)
	}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Keys returns the cached keys, least recently used first.
func (c *Cache) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.entries.Len())
	for p := c.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// GetOrFetch returns the cached body for key, or calls fetch and caches its result.
// Failed fetches are not cached. Callers asking for a key that is being fetched wait for that fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	if c == nil {
		return fetch(ctx)
	}
	if body, ok := c.Get(key); ok {
		return body, nil
	}

	c.inFlightMu.Lock()
	if cl, exists := c.inFlight[key]; exists {
		c.inFlightMu.Unlock()
		select {
		case <-cl.done:
			return cl.body, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inFlight[key] = cl
	c.inFlightMu.Unlock()

	defer func() {
		c.inFlightMu.Lock()
		delete(c.inFlight, key)
		close(cl.done)
		c.inFlightMu.Unlock()
	}()

	cl.body, cl.err = fetch(ctx)
	if cl.err == nil {
		c.Set(key, cl.body)
	}
	return cl.body, cl.err
}
