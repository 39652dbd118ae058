package signal

import "github.com/vango-dev/lumen/pkg/ref"

// Signal is the capability shared by every reactive value.
type Signal[T any] interface {
	// Get returns a read handle on the current value.
	Get() *ref.Ref[T]

	// SetValue replaces the value. Read-only signals ignore it.
	SetValue(value T)

	// Listen registers a listener. Read-only signals ignore it.
	Listen(listener Listener[T])

	// Notify delivers a change to listeners, or invalidates a cache and
	// forwards to the sources.
	Notify()

	// Clone returns a new handle sharing the same underlying state.
	Clone() Signal[T]
}

// Listener is called with a read handle on the new value. The handle is
// released when the listener returns.
type Listener[T any] func(value *ref.Ref[T])

// Value reads s and releases the handle.
func Value[T any](s Signal[T]) T {
	r := s.Get()
	defer r.Release()
	return r.Get()
}
