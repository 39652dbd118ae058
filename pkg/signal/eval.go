package signal

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/lumen/internal/guard"
	"github.com/vango-dev/lumen/pkg/ref"
)

// Eval caches the result of a function until it is invalidated. It starts
// dirty. SetValue and Listen are no-ops; Notify is Invalidate.
type Eval[T any] struct {
	core *evalCore[T]
}

type evalCore[T any] struct {
	eval  func() T
	dirty atomic.Bool

	// evalMu serialises evaluation.
	evalMu sync.Mutex

	mu    guard.RWMutex
	value T
	// has is false while no value or an evaluation is in flight.
	has bool
}

// NewEval creates an Eval over fn.
func NewEval[T any](fn func() T) *Eval[T] {
	e := &Eval[T]{core: &evalCore[T]{eval: fn}}
	e.core.dirty.Store(true)
	return e
}

// Invalidate forces re-evaluation on the next Get.
func (e *Eval[T]) Invalidate() {
	e.core.dirty.Store(true)
}

// Dirty reports whether the next Get re-evaluates.
func (e *Eval[T]) Dirty() bool {
	return e.core.dirty.Load()
}

func (c *evalCore[T]) cached() (T, bool) {
	c.mu.RLock("signal.Eval.Get")
	defer c.mu.RUnlock()
	return c.value, c.has && !c.dirty.Load()
}

// Get returns the cached value, evaluating first if dirty. Concurrent Gets
// evaluate once; a Get that arrives during evaluation waits for its result.
func (e *Eval[T]) Get() *ref.Ref[T] {
	c := e.core
	if v, ok := c.cached(); ok {
		return ref.Owned(v)
	}

	c.evalMu.Lock()
	defer c.evalMu.Unlock()
	if v, ok := c.cached(); ok {
		return ref.Owned(v)
	}

	// Hide the old value before clearing dirty so no reader can pair the
	// two and return it.
	c.mu.Write("signal.Eval.Get", func() { c.has = false })
	c.dirty.Store(false)

	ok := false
	defer func() {
		if !ok {
			c.dirty.Store(true)
		}
	}()
	v := c.eval()
	c.mu.Write("signal.Eval.Get", func() {
		c.value = v
		c.has = true
	})
	ok = true
	return ref.Owned(v)
}

// SetValue is a no-op.
func (e *Eval[T]) SetValue(T) {}

// Listen is a no-op.
func (e *Eval[T]) Listen(Listener[T]) {}

// Notify marks the value dirty.
func (e *Eval[T]) Notify() {
	e.Invalidate()
}

// Clone returns a handle sharing the function and the cache.
func (e *Eval[T]) Clone() Signal[T] {
	return &Eval[T]{core: e.core}
}
