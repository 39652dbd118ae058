package signal

import (
	"fmt"

	"github.com/vango-dev/lumen/pkg/ref"
)

// Pair is the value of a Zip signal.
type Pair[A, B any] struct {
	First  A
	Second B
}

func (p Pair[A, B]) String() string {
	return fmt.Sprintf("(%v, %v)", p.First, p.Second)
}

// ZipSignal combines two signals into a Pair. Both sources are read, first
// then second, on every recompute. SetValue and Listen are no-ops.
type ZipSignal[A, B any] struct {
	signalA Signal[A]
	signalB Signal[B]
	cache   *cache[Pair[A, B]]
}

// NewZip creates a ZipSignal over a and b.
func NewZip[A, B any](a Signal[A], b Signal[B]) *ZipSignal[A, B] {
	return &ZipSignal[A, B]{
		signalA: a,
		signalB: b,
		cache:   &cache[Pair[A, B]]{},
	}
}

// SignalA returns a handle on the first source.
func (z *ZipSignal[A, B]) SignalA() Signal[A] {
	return z.signalA.Clone()
}

// SignalB returns a handle on the second source.
func (z *ZipSignal[A, B]) SignalB() Signal[B] {
	return z.signalB.Clone()
}

// Get returns the cached pair, recomputing it if invalid.
func (z *ZipSignal[A, B]) Get() *ref.Ref[Pair[A, B]] {
	return ref.Owned(z.cache.get("signal.Zip.Get", func() Pair[A, B] {
		a := z.signalA.Get().Into()
		b := z.signalB.Get().Into()
		return Pair[A, B]{First: a, Second: b}
	}))
}

// SetValue is a no-op.
func (z *ZipSignal[A, B]) SetValue(Pair[A, B]) {}

// Listen is a no-op; listen on the sources instead.
func (z *ZipSignal[A, B]) Listen(Listener[Pair[A, B]]) {}

// Notify invalidates the cache and notifies both sources, first then second.
func (z *ZipSignal[A, B]) Notify() {
	z.cache.invalidate()
	z.signalA.Notify()
	z.signalB.Notify()
}

// Clone returns a handle sharing both sources and the cache.
func (z *ZipSignal[A, B]) Clone() Signal[Pair[A, B]] {
	return &ZipSignal[A, B]{
		signalA: z.signalA.Clone(),
		signalB: z.signalB.Clone(),
		cache:   z.cache,
	}
}

// Generation returns the current cache generation.
func (z *ZipSignal[A, B]) Generation() uint64 {
	return z.cache.generation()
}
