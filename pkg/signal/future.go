package signal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/guard"
	"github.com/vango-dev/lumen/pkg/ref"
	"github.com/vango-dev/lumen/pkg/tasks"
	"github.com/vango-dev/lumen/pkg/update"
)

// Future exposes an asynchronous computation as a signal of AsyncState.
//
// The computation runs on a task runner. When it finishes the state moves
// from Loading to Ready or Error exactly once; then, in order, the attached
// update Manager receives EVAL|DRAW, the completion callback runs, and
// listeners are notified. All three happen on the runner goroutine.
//
// Get never blocks on the computation. SetValue is a no-op.
type Future[T any] struct {
	core *futureCore[T]
}

type futureCore[T any] struct {
	mu    guard.RWMutex
	state AsyncState[T]

	listenersMu sync.Mutex
	listeners   []Listener[AsyncState[T]]

	manager    atomic.Pointer[update.Manager]
	onComplete atomic.Pointer[func(AsyncState[T])]

	closeCtx context.Context
	close    context.CancelFunc
	closed   atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// FutureOption configures a Future before its computation is spawned.
type FutureOption[T any] func(*Future[T])

// OnComplete sets the completion callback.
func OnComplete[T any](fn func(AsyncState[T])) FutureOption[T] {
	return func(f *Future[T]) {
		f.SetOnComplete(fn)
	}
}

// WithUpdateManager attaches m, which receives EVAL|DRAW on completion.
func WithUpdateManager[T any](m *update.Manager) FutureOption[T] {
	return func(f *Future[T]) {
		f.SetUpdateManager(m)
	}
}

// NewFuture spawns fn on spawner and returns a Future tracking it. A panic in
// fn becomes an Error state with code E104.
func NewFuture[T any](spawner tasks.Spawner, fn func(ctx context.Context) (T, error), opts ...FutureOption[T]) *Future[T] {
	closeCtx, closeFn := context.WithCancel(context.Background())
	f := &Future[T]{core: &futureCore[T]{
		closeCtx: closeCtx,
		close:    closeFn,
		done:     make(chan struct{}),
	}}
	for _, opt := range opts {
		opt(f)
	}

	spawner.Spawn(func(runCtx context.Context) {
		ctx, cancel := context.WithCancel(runCtx)
		defer cancel()
		stop := context.AfterFunc(closeCtx, cancel)
		defer stop()

		value, err := runFuture(ctx, fn)
		f.complete(value, err)
	})
	return f
}

// NewFutureFunc is NewFuture for a computation that takes no context.
func NewFutureFunc[T any](spawner tasks.Spawner, fn func() (T, error), opts ...FutureOption[T]) *Future[T] {
	return NewFuture(spawner, func(context.Context) (T, error) { return fn() }, opts...)
}

func runFuture[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(errors.CodeAsyncPanicked, r).WithOp("signal.Future")
		}
	}()
	return fn(ctx)
}

func (f *Future[T]) complete(value T, err error) {
	c := f.core
	if c.closed.Load() {
		return
	}

	next := Ready(value)
	if err != nil {
		next = Errored[T](err)
	}

	wrote := false
	c.mu.Write("signal.Future.complete", func() {
		if c.state.IsLoading() && !c.closed.Load() {
			c.state = next
			wrote = true
		}
	})
	if !wrote {
		return
	}
	defer c.doneOnce.Do(func() { close(c.done) })

	if m := c.manager.Load(); m != nil {
		m.Insert(update.Eval | update.Draw)
	}
	if cb := c.onComplete.Load(); cb != nil {
		(*cb)(next)
	}
	f.Notify()
}

// SetUpdateManager attaches m. Completion inserts EVAL|DRAW into it. If the
// future already completed nothing is inserted.
func (f *Future[T]) SetUpdateManager(m *update.Manager) {
	f.core.manager.Store(m)
}

// SetOnComplete sets the completion callback. If the future already
// completed the callback is not invoked.
func (f *Future[T]) SetOnComplete(fn func(AsyncState[T])) {
	if fn == nil {
		f.core.onComplete.Store(nil)
		return
	}
	f.core.onComplete.Store(&fn)
}

// Done is closed once the state has become Ready or Error and listeners have
// been notified.
func (f *Future[T]) Done() <-chan struct{} {
	return f.core.done
}

// State returns a copy of the current state.
func (f *Future[T]) State() AsyncState[T] {
	return f.Get().Into()
}

// Close detaches the future from its computation: the computation's context
// is cancelled and a later completion is dropped. The state keeps whatever it
// held, no callback runs and no flags are inserted.
func (f *Future[T]) Close() {
	if f.core.closed.CompareAndSwap(false, true) {
		f.core.close()
	}
}

// Closed reports whether Close was called.
func (f *Future[T]) Closed() bool {
	return f.core.closed.Load()
}

// Get returns a Guarded ref on the current state.
func (f *Future[T]) Get() *ref.Ref[AsyncState[T]] {
	f.core.mu.RLock("signal.Future.Get")
	return ref.Guarded(&f.core.state, f.core.mu.RUnlock)
}

// SetValue is a no-op; only the computation decides the state.
func (f *Future[T]) SetValue(AsyncState[T]) {}

// Listen appends listener.
func (f *Future[T]) Listen(listener Listener[AsyncState[T]]) {
	if listener == nil {
		return
	}
	f.core.listenersMu.Lock()
	f.core.listeners = append(f.core.listeners, listener)
	f.core.listenersMu.Unlock()
}

// Notify calls every listener with the current state, in registration order.
func (f *Future[T]) Notify() {
	f.core.listenersMu.Lock()
	listeners := make([]Listener[AsyncState[T]], len(f.core.listeners))
	copy(listeners, f.core.listeners)
	f.core.listenersMu.Unlock()

	for _, l := range listeners {
		r := f.Get()
		func() {
			defer r.Release()
			l(r)
		}()
	}
}

// Clone returns a handle sharing the state, listeners and computation.
func (f *Future[T]) Clone() Signal[AsyncState[T]] {
	return &Future[T]{core: f.core}
}
