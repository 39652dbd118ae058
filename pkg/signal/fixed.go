package signal

import "github.com/vango-dev/lumen/pkg/ref"

// Fixed holds a constant. Every mutator is a no-op.
type Fixed[T any] struct {
	value *T
}

// NewFixed creates a Fixed signal holding value.
func NewFixed[T any](value T) *Fixed[T] {
	return &Fixed[T]{value: &value}
}

// Get returns a Shared ref on the constant.
func (f *Fixed[T]) Get() *ref.Ref[T] {
	return ref.Shared(f.value)
}

// SetValue is a no-op.
func (f *Fixed[T]) SetValue(T) {}

// Listen is a no-op.
func (f *Fixed[T]) Listen(Listener[T]) {}

// Notify is a no-op.
func (f *Fixed[T]) Notify() {}

// Clone returns a handle sharing the constant.
func (f *Fixed[T]) Clone() Signal[T] {
	return &Fixed[T]{value: f.value}
}
