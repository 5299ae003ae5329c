package objectstore

import (
	"github.com/dgraph-io/ristretto"
)

// readCache memoizes Get results. Content-addressed objects never change
// once written, so there is no invalidation story beyond eviction — a
// cache hit is always correct.
type readCache struct {
	cache *ristretto.Cache
}

func newReadCache() (*readCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     64 << 20, // 64MB of cached object bytes
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &readCache{cache: c}, nil
}

func (c *readCache) get(key string) ([]byte, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *readCache) set(key string, data []byte) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Set(key, data, int64(len(data)))
}
