// Package ref provides Ref, the uniform read handle returned by signal reads.
//
// A Ref avoids copies where it can: it may hold its own copy of a value, point
// into storage owned elsewhere, point at an immutable shared value, or point
// at a value protected by a read lock it currently holds.
//
// A Guarded Ref keeps the read lock until Release is called. Release it before
// mutating the same signal from the same goroutine:
//
//	r := count.Get()
//	n := r.Get()
//	r.Release()
//	count.SetValue(n + 1)
package ref

import "sync/atomic"

// Kind identifies how a Ref holds its value.
type Kind uint8

const (
	// KindOwned holds a private copy.
	KindOwned Kind = iota
	// KindBorrowed points into storage owned by someone else.
	KindBorrowed
	// KindShared points at an immutable value shared between handles.
	KindShared
	// KindGuarded points at a value while holding its read lock.
	KindGuarded
)

func (k Kind) String() string {
	switch k {
	case KindOwned:
		return "owned"
	case KindBorrowed:
		return "borrowed"
	case KindShared:
		return "shared"
	case KindGuarded:
		return "guarded"
	default:
		return "unknown"
	}
}

// Ref is a read handle over a T.
type Ref[T any] struct {
	kind     Kind
	value    T
	ptr      *T
	unlock   func()
	released atomic.Bool
}

// Owned returns a Ref holding v.
func Owned[T any](v T) *Ref[T] {
	return &Ref[T]{kind: KindOwned, value: v}
}

// Borrowed returns a Ref pointing at p. The owner must keep *p stable for the
// lifetime of the Ref.
func Borrowed[T any](p *T) *Ref[T] {
	return &Ref[T]{kind: KindBorrowed, ptr: p}
}

// Shared returns a Ref pointing at an immutable shared value.
func Shared[T any](p *T) *Ref[T] {
	return &Ref[T]{kind: KindShared, ptr: p}
}

// Guarded returns a Ref pointing at p while a read lock is held. unlock is
// called exactly once, by the first Release.
func Guarded[T any](p *T, unlock func()) *Ref[T] {
	return &Ref[T]{kind: KindGuarded, ptr: p, unlock: unlock}
}

// Kind reports how the Ref holds its value.
func (r *Ref[T]) Kind() Kind {
	return r.kind
}

// Get returns the referenced value. For a Guarded Ref this must happen before
// Release.
func (r *Ref[T]) Get() T {
	if r.ptr != nil {
		return *r.ptr
	}
	return r.value
}

// Release drops the read lock of a Guarded Ref. It is idempotent and a no-op
// for other kinds.
func (r *Ref[T]) Release() {
	if r.unlock == nil {
		return
	}
	if r.released.CompareAndSwap(false, true) {
		r.unlock()
	}
}

// Released reports whether Release has run on a Guarded Ref.
func (r *Ref[T]) Released() bool {
	return r.released.Load()
}

// Into returns the value and releases the Ref.
func (r *Ref[T]) Into() T {
	v := r.Get()
	r.Release()
	return v
}

// Map reads r, releases it and returns an Owned Ref of fn applied to the value.
func Map[T, U any](r *Ref[T], fn func(T) U) *Ref[U] {
	return Owned(fn(r.Into()))
}
