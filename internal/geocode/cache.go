package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CacheStats counts cache activity
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Cache is a bounded read-through cache of lookup results keyed by the
// hashed, lowercased query string. It is purely a performance layer: the
// engine behaves identically with or without it.
type Cache struct {
	mu         sync.RWMutex
	data       map[string]*Result
	order      []string
	maxEntries int
	stats      CacheStats
}

// NewCache creates a cache bounded to maxEntries results. A zero or
// negative bound defaults to 10000.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Cache{
		data:       make(map[string]*Result),
		maxEntries: maxEntries,
	}
}

// cacheKey hashes the normalized query so arbitrary input stays a fixed-size key
func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached result for the query
func (c *Cache) Get(query string) (*Result, bool) {
	key := cacheKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.data[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return result, ok
}

// Set stores a result, evicting the oldest entry once the bound is reached
func (c *Cache) Set(query string, result *Result) {
	key := cacheKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists {
		for len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.data, oldest)
		}
		c.order = append(c.order, key)
	}
	c.data[key] = result
}

// Clear drops every entry and resets the counters
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*Result)
	c.order = nil
	c.stats = CacheStats{}
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// Load reads previously saved entries from a JSON file. A missing file is
// not an error; the cache just starts empty.
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	entries := make(map[string]*Result)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, result := range entries {
		if _, exists := c.data[key]; !exists {
			if len(c.order) >= c.maxEntries {
				break
			}
			c.order = append(c.order, key)
		}
		c.data[key] = result
	}
	return nil
}

// Save writes the current entries to a JSON file
func (c *Cache) Save(path string) error {
	c.mu.RLock()
	data, err := json.Marshal(c.data)
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// CachedResolver wraps a Resolver with read-through caching. Only
// successful results are cached; failures stay retryable.
type CachedResolver struct {
	inner Resolver
	cache *Cache
}

// NewCachedResolver wraps inner with the given cache
func NewCachedResolver(inner Resolver, cache *Cache) *CachedResolver {
	return &CachedResolver{inner: inner, cache: cache}
}

// Resolve returns a cached result when available, otherwise delegates
func (r *CachedResolver) Resolve(ctx context.Context, query string) (*Result, error) {
	if result, ok := r.cache.Get(query); ok {
		return result, nil
	}

	result, err := r.inner.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	r.cache.Set(query, result)
	return result, nil
}

// Cache exposes the underlying cache for stats and persistence
func (r *CachedResolver) Cache() *Cache {
	return r.cache
}
