package signal

import (
	"sync/atomic"

	"github.com/vango-dev/lumen/internal/guard"
)

// cache is the generation-pair cache shared by Derived, Map and Zip.
//
// The cache is valid iff it holds a value and cacheGen == sourceGen.
// invalidate bumps cacheGen (wrapping) and never recomputes.
type cache[U any] struct {
	mu    guard.RWMutex
	value U
	has   bool

	cacheGen  atomic.Uint64
	sourceGen atomic.Uint64
}

func (c *cache[U]) invalidate() {
	c.cacheGen.Add(1)
}

func (c *cache[U]) valid() bool {
	return c.cacheGen.Load() == c.sourceGen.Load()
}

// generation returns the current cache generation.
func (c *cache[U]) generation() uint64 {
	return c.cacheGen.Load()
}

// get returns the cached value, recomputing first if the cache is invalid or
// empty. compute runs without the cache lock held; if it panics the cache is
// left untouched and the panic reaches the caller.
func (c *cache[U]) get(op string, compute func() U) U {
	c.mu.RLock(op)
	if c.has && c.valid() {
		v := c.value
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	// Stamp the generation seen before computing so an invalidation that
	// races the compute keeps the cache invalid.
	gen := c.cacheGen.Load()
	v := compute()

	c.mu.Write(op, func() {
		c.value = v
		c.has = true
		c.sourceGen.Store(gen)
	})
	return v
}
