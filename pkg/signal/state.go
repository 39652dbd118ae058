package signal

import (
	"sync"

	"github.com/vango-dev/lumen/internal/guard"
	"github.com/vango-dev/lumen/pkg/ref"
)

// State is a mutable reactive value.
//
// Clones share the value and the listener list. Listeners are appended on
// every Listen call without de-duplication.
type State[T any] struct {
	core *stateCore[T]
}

type stateCore[T any] struct {
	mu    guard.RWMutex
	value T

	// listenersMu protects listeners.
	listenersMu sync.Mutex
	listeners   []Listener[T]
}

// NewState creates a State holding initial.
func NewState[T any](initial T) *State[T] {
	return &State[T]{core: &stateCore[T]{value: initial}}
}

// Get returns a Guarded ref holding the read lock. Concurrent readers do not
// block each other; Release before writing from the same goroutine.
func (s *State[T]) Get() *ref.Ref[T] {
	s.core.mu.RLock("signal.State.Get")
	return ref.Guarded(&s.core.value, s.core.mu.RUnlock)
}

// Mutate applies fn to the value under the write lock, then notifies. A
// panic in fn poisons the signal.
func (s *State[T]) Mutate(fn func(value *T)) {
	s.core.mu.Write("signal.State.Mutate", func() {
		fn(&s.core.value)
	})
	s.Notify()
}

// SetValue replaces the value and notifies.
func (s *State[T]) SetValue(value T) {
	s.Mutate(func(v *T) { *v = value })
}

// Update replaces the value with fn(old) and notifies.
func (s *State[T]) Update(fn func(T) T) {
	s.Mutate(func(v *T) { *v = fn(*v) })
}

// Listen appends listener.
func (s *State[T]) Listen(listener Listener[T]) {
	if listener == nil {
		return
	}
	s.core.listenersMu.Lock()
	s.core.listeners = append(s.core.listeners, listener)
	s.core.listenersMu.Unlock()
}

// ListenerCount returns the number of registered listeners.
func (s *State[T]) ListenerCount() int {
	s.core.listenersMu.Lock()
	defer s.core.listenersMu.Unlock()
	return len(s.core.listeners)
}

// Notify calls every listener synchronously, in registration order, each
// with a fresh read handle. A listener must not write to this signal while
// holding its handle.
func (s *State[T]) Notify() {
	// Copy listeners while holding lock
	s.core.listenersMu.Lock()
	listeners := make([]Listener[T], len(s.core.listeners))
	copy(listeners, s.core.listeners)
	s.core.listenersMu.Unlock()

	for _, l := range listeners {
		s.deliver(l)
	}
}

func (s *State[T]) deliver(l Listener[T]) {
	r := s.Get()
	defer r.Release()
	l(r)
}

// Clone returns a handle sharing value and listeners.
func (s *State[T]) Clone() Signal[T] {
	return &State[T]{core: s.core}
}

// Poisoned reports whether a Mutate panicked.
func (s *State[T]) Poisoned() bool {
	return s.core.mu.Poisoned()
}
