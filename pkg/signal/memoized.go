package signal

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/lumen/pkg/ref"
)

// Memoized creates its value once, on the first Get, and never changes it.
// SetValue, Listen and Notify are no-ops. Clones share the value.
//
// If the factory panics the cell stays empty and the next Get calls the
// factory again.
type Memoized[T any] struct {
	cell *memoCell[T]
}

type memoCell[T any] struct {
	factory func() T
	mu      sync.Mutex
	done    atomic.Bool
	value   T
}

// NewMemoized creates a Memoized signal over factory.
func NewMemoized[T any](factory func() T) *Memoized[T] {
	return &Memoized[T]{cell: &memoCell[T]{factory: factory}}
}

func (c *memoCell[T]) get() *T {
	if c.done.Load() {
		return &c.value
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done.Load() {
		c.value = c.factory()
		c.done.Store(true)
	}
	return &c.value
}

// Get returns a Borrowed ref into the cell, creating the value on first use.
func (m *Memoized[T]) Get() *ref.Ref[T] {
	return ref.Borrowed(m.cell.get())
}

// Initialized reports whether the factory has run successfully.
func (m *Memoized[T]) Initialized() bool {
	return m.cell.done.Load()
}

// SetValue is a no-op.
func (m *Memoized[T]) SetValue(T) {}

// Listen is a no-op.
func (m *Memoized[T]) Listen(Listener[T]) {}

// Notify is a no-op.
func (m *Memoized[T]) Notify() {}

// Clone returns a handle sharing the cell.
func (m *Memoized[T]) Clone() Signal[T] {
	return &Memoized[T]{cell: m.cell}
}
