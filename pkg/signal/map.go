package signal

import "github.com/vango-dev/lumen/pkg/ref"

// Map applies a mapping to an inner signal's value and caches the result
// until the next Notify. SetValue and Listen are no-ops; reach the inner
// signal through Signal.
type Map[T, U any] struct {
	signal Signal[T]
	mapFn  func(*ref.Ref[T]) *ref.Ref[U]
	cache  *cache[U]
}

// NewMap creates a Map over inner. mapFn may return any kind of Ref; the
// result is copied into the cache before the inner handle is released.
func NewMap[T, U any](inner Signal[T], mapFn func(*ref.Ref[T]) *ref.Ref[U]) *Map[T, U] {
	return &Map[T, U]{
		signal: inner,
		mapFn:  mapFn,
		cache:  &cache[U]{},
	}
}

// Signal returns a handle on the inner signal.
func (m *Map[T, U]) Signal() Signal[T] {
	return m.signal.Clone()
}

// GetUnmapped reads the inner signal without mapping.
func (m *Map[T, U]) GetUnmapped() *ref.Ref[T] {
	return m.signal.Get()
}

// Get returns the cached mapped value, recomputing it if invalid.
func (m *Map[T, U]) Get() *ref.Ref[U] {
	return ref.Owned(m.cache.get("signal.Map.Get", func() U {
		inner := m.signal.Get()
		defer inner.Release()
		return m.mapFn(inner).Into()
	}))
}

// SetValue is a no-op.
func (m *Map[T, U]) SetValue(U) {}

// Listen is a no-op.
func (m *Map[T, U]) Listen(Listener[U]) {}

// Notify invalidates the cache and notifies the inner signal.
func (m *Map[T, U]) Notify() {
	m.cache.invalidate()
	m.signal.Notify()
}

// Clone returns a handle sharing the inner signal and the cache.
func (m *Map[T, U]) Clone() Signal[U] {
	return &Map[T, U]{
		signal: m.signal.Clone(),
		mapFn:  m.mapFn,
		cache:  m.cache,
	}
}

// Generation returns the current cache generation.
func (m *Map[T, U]) Generation() uint64 {
	return m.cache.generation()
}
