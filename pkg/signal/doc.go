// Package signal provides the reactive values that connect application state
// to layout and redraw.
//
// Every signal implements one capability, Signal[T]:
//
//	Get() *ref.Ref[T]      read the current value
//	SetValue(T)            replace the value (no-op on read-only signals)
//	Listen(Listener[T])    subscribe (no-op on read-only signals)
//	Notify()               deliver a change / invalidate caches
//	Clone() Signal[T]      another handle on the same underlying state
//
// # Variants
//
// State[T] is the mutable root. It keeps its value behind a read/write lock
// and calls its listeners, in registration order, after every Mutate:
//
//	count := signal.NewState(0)
//	count.Listen(func(r *ref.Ref[int]) { manager.Insert(update.Eval) })
//	count.Mutate(func(n *int) { *n++ })
//
// Derived, Map and Zip wrap source signals and cache their result. A cache is
// valid while its cache generation equals the generation stamped at the last
// recompute. Notify only bumps the generation and forwards to the sources;
// the recompute happens lazily, on the next Get:
//
//	doubled := signal.Derive(count, func(n int) int { return n * 2 })
//	pair := signal.Zip(count, label)
//
// Eval caches a zero-argument function behind a dirty bit. Memoized runs its
// factory once, on first Get, and is immutable afterwards. Fixed wraps a
// constant. Future runs a computation on a task runner and exposes its
// AsyncState: Loading, then exactly one of Ready or Error.
//
// # Read handles
//
// State and Future return Guarded refs that hold the read lock until
// released. Release them before writing to the same signal, or use Value:
//
//	n := signal.Value[int](count)
//
// # Failure
//
// A panic inside State.Mutate poisons the signal: every later Get or Mutate,
// on any clone, panics with an E101 error. A panicking recompute propagates
// to the Get caller and leaves the cache invalid, so the next Get retries.
// TryValue turns such a panic into an error.
package signal
