// Package resultcache memoizes finished extraction runs so that repeated
// requests for the same document and bank are served without reprocessing.
package resultcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"fmoura/extrato-csv/internal/logging"
)

// DefaultTTL matches how long a statement extraction stays valid: the input
// bytes are immutable, so expiry only bounds memory growth.
const DefaultTTL = 24 * time.Hour

const cleanupInterval = 10 * time.Minute

// Key builds the cache key for a document/bank pair. documentHash is the
// hex SHA-256 of the raw input bytes; the bank is part of the key because
// the same bytes parse differently under different profiles.
func Key(documentHash, bankID string) string {
	return documentHash + ":" + bankID
}

// Entry wraps a cached value with its provenance.
type Entry struct {
	Key       string
	CreatedAt time.Time
	Value     interface{}
}

// Cache is a TTL result store with request coalescing: concurrent callers
// computing the same key share one producer invocation.
type Cache struct {
	logger logging.Logger
	store  *gocache.Cache
	group  singleflight.Group
}

// New creates a cache with the given entry lifetime. ttl<=0 uses DefaultTTL.
func New(logger logging.Logger, ttl time.Duration) *Cache {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		logger: logger,
		store:  gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the cached entry for key, if present and not expired.
func (c *Cache) Get(key string) (Entry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// GetOrCompute returns the cached value for key, running producer on a miss.
// Concurrent misses on the same key run producer once and share the result.
// Producer errors are not cached.
func (c *Cache) GetOrCompute(key string, producer func() (interface{}, error)) (interface{}, error) {
	if entry, ok := c.Get(key); ok {
		c.logger.Debug("Result cache hit",
			logging.Field{Key: logging.FieldCacheKey, Value: key})
		return entry.Value, nil
	}

	value, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have stored the
		// entry between our miss and the Do call.
		if entry, ok := c.Get(key); ok {
			return entry.Value, nil
		}

		v, err := producer()
		if err != nil {
			return nil, err
		}
		c.store.SetDefault(key, Entry{
			Key:       key,
			CreatedAt: time.Now(),
			Value:     v,
		})
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Result cache computation shared",
			logging.Field{Key: logging.FieldCacheKey, Value: key})
	}
	return value, nil
}

// Invalidate removes an entry, forcing the next lookup to recompute.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

// Flush empties the cache.
func (c *Cache) Flush() {
	c.store.Flush()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
