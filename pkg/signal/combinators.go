package signal

import (
	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/ref"
)

// Derive is NewDerived with a computation over the plain value.
//
//	count := signal.NewState(5)
//	doubled := signal.Derive(count, func(n int) int { return n * 2 })
func Derive[T, U any](source Signal[T], fn func(T) U) *Derived[T, U] {
	return NewDerived(source, func(r *ref.Ref[T]) U { return fn(r.Get()) })
}

// MapOf is NewMap with a mapping over the plain value.
func MapOf[T, U any](inner Signal[T], fn func(T) U) *Map[T, U] {
	return NewMap(inner, func(r *ref.Ref[T]) *ref.Ref[U] { return ref.Owned(fn(r.Get())) })
}

// Zip combines two signals into a signal of Pair. The result recomputes
// after either source is notified through it.
//
//	a := signal.NewState(1)
//	b := signal.NewState("x")
//	z := signal.Zip[int, string](a, b) // Pair{1, "x"}
func Zip[A, B any](a Signal[A], b Signal[B]) *ZipSignal[A, B] {
	return NewZip(a, b)
}

// TryValue reads s, turning a panicking recompute into an E103 error. A
// poisoned lock is not recoverable and still panics.
func TryValue[T any](s Signal[T]) (value T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*errors.Error); ok && e.Code == errors.CodeLockPoisoned {
			panic(r)
		}
		err = errors.FromPanic(errors.CodeRecomputePanicked, r).WithOp("signal.TryValue")
	}()
	return Value(s), nil
}
