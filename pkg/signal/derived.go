package signal

import "github.com/vango-dev/lumen/pkg/ref"

// Derived computes its value from a source signal and caches it until the
// next Notify.
//
// Derived is read-only: SetValue and Listen are no-ops. Mutate the source,
// reachable through Source.
type Derived[T, U any] struct {
	source  Signal[T]
	compute func(*ref.Ref[T]) U
	cache   *cache[U]
}

// NewDerived creates a Derived signal over source.
func NewDerived[T, U any](source Signal[T], compute func(*ref.Ref[T]) U) *Derived[T, U] {
	return &Derived[T, U]{
		source:  source,
		compute: compute,
		cache:   &cache[U]{},
	}
}

// Source returns a handle on the source signal.
func (d *Derived[T, U]) Source() Signal[T] {
	return d.source.Clone()
}

// GetSource reads the source without applying the computation.
func (d *Derived[T, U]) GetSource() *ref.Ref[T] {
	return d.source.Get()
}

// Get returns the cached value, recomputing it if invalid.
func (d *Derived[T, U]) Get() *ref.Ref[U] {
	return ref.Owned(d.cache.get("signal.Derived.Get", func() U {
		r := d.source.Get()
		defer r.Release()
		return d.compute(r)
	}))
}

// SetValue is a no-op.
func (d *Derived[T, U]) SetValue(U) {}

// Listen is a no-op; listen on the source instead.
func (d *Derived[T, U]) Listen(Listener[U]) {}

// Notify invalidates the cache and notifies the source.
func (d *Derived[T, U]) Notify() {
	d.cache.invalidate()
	d.source.Notify()
}

// Clone returns a handle sharing the source and the cache.
func (d *Derived[T, U]) Clone() Signal[U] {
	return &Derived[T, U]{
		source:  d.source.Clone(),
		compute: d.compute,
		cache:   d.cache,
	}
}

// Generation returns the current cache generation.
func (d *Derived[T, U]) Generation() uint64 {
	return d.cache.generation()
}
