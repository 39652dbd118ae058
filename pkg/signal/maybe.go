package signal

import "github.com/vango-dev/lumen/pkg/ref"

// Maybe is either a plain value or a signal. Widgets accept Maybe so callers
// can pass a constant or something reactive.
type Maybe[T any] struct {
	value  T
	signal Signal[T]
}

// Just wraps a plain value.
func Just[T any](value T) Maybe[T] {
	return Maybe[T]{value: value}
}

// FromSignal wraps a signal.
func FromSignal[T any](s Signal[T]) Maybe[T] {
	return Maybe[T]{signal: s}
}

// IsSignal reports whether m wraps a signal.
func (m Maybe[T]) IsSignal() bool {
	return m.signal != nil
}

// Get reads the current value.
func (m Maybe[T]) Get() *ref.Ref[T] {
	if m.signal != nil {
		return m.signal.Get()
	}
	return ref.Owned(m.value)
}

// IntoSignal returns the wrapped signal, or a Fixed holding the value.
func (m Maybe[T]) IntoSignal() Signal[T] {
	if m.signal != nil {
		return m.signal
	}
	return NewFixed(m.value)
}
