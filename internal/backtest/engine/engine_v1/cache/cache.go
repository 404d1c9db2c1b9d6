package cache

// Cache is per-run scratch storage for strategies. It lives exactly as long
// as one backtest run; Reset wipes it between runs so no state leaks across
// repeated runs of the same engine.
type Cache interface {
	Reset()
	// Set stores strategy state by key.
	Set(key string, value any)
	// Get returns the value stored under key, if any.
	Get(key string) (any, bool)
}

type CacheV1 struct {
	data map[string]any
}

func NewCacheV1() Cache {
	return &CacheV1{
		data: make(map[string]any),
	}
}

// Reset implements cache.Cache.
func (c *CacheV1) Reset() {
	c.data = make(map[string]any)
}

// Set implements cache.Cache.
func (c *CacheV1) Set(key string, value any) {
	c.data[key] = value
}

// Get implements cache.Cache.
func (c *CacheV1) Get(key string) (any, bool) {
	value, ok := c.data[key]

	return value, ok
}
