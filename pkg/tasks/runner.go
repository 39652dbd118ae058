package tasks

import (
	"context"
	stderrors "errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/vango-dev/lumen/internal/errors"
)

// Spawner is the capability to run a function in the background.
type Spawner interface {
	Spawn(fn func(ctx context.Context))
}

// SpawnerFunc adapts a function to the Spawner interface.
type SpawnerFunc func(fn func(ctx context.Context))

// Spawn calls f(fn).
func (f SpawnerFunc) Spawn(fn func(ctx context.Context)) {
	f(fn)
}

// Config configures a Runner.
type Config struct {
	// Workers bounds concurrently running spawned tasks.
	// Zero means half the available CPUs, at least one.
	Workers int
}

// DefaultWorkers returns the worker count used when Config.Workers is zero.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}

// Hooks observe the task lifecycle. Every field is optional.
type Hooks struct {
	OnSpawn    func(id uuid.UUID)
	OnComplete func(id uuid.UUID)
	OnPanic    func(id uuid.UUID, err error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(r *Runner) {
		r.hooks = h
	}
}

// Runner is a bounded pool of goroutines for background tasks.
//
// Spawn never waits for a free worker: each task is queued on its own
// goroutine, which then waits for a pool slot. Workers bounds parallelism,
// not the number of queued tasks.
type Runner struct {
	workers  int
	pool     *pool.Pool
	queued   conc.WaitGroup
	blocking conc.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
	hooks  Hooks

	// mu orders admission against Shutdown. It is held only while a task
	// is queued, never while waiting for a worker.
	mu     sync.RWMutex
	closed bool

	panicMu sync.Mutex
	panics  []error

	spawned   atomic.Int64
	completed atomic.Int64
}

// New creates a Runner.
func New(cfg Config, opts ...Option) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		workers: workers,
		pool:    pool.New().WithMaxGoroutines(workers),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Workers returns the pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// Context returns the runner context. It is cancelled by Shutdown.
func (r *Runner) Context() context.Context {
	return r.ctx
}

// Spawn queues fn on the pool and returns at once, even when every worker is
// busy. It is safe to call from a running task. A panic in fn is recovered,
// logged and reported by Shutdown.
func (r *Runner) Spawn(fn func(ctx context.Context)) {
	id := uuid.New()
	admitted := r.admit(&r.queued, func() {
		if r.hooks.OnSpawn != nil {
			r.hooks.OnSpawn(id)
		}
		r.logger.Debug("task spawned", "task_id", id)
		r.pool.Go(func() {
			r.run(id, func() { fn(r.ctx) })
		})
	})
	if !admitted {
		panic(errors.New(errors.CodeRunnerNotInit).
			WithOp("tasks.Runner.Spawn").
			WithDetail("The runner has been shut down."))
	}
}

// admit starts fn on wg unless the runner is closed. Starting a goroutine
// does not block, so mu is never held across a wait.
func (r *Runner) admit(wg *conc.WaitGroup, fn func()) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	r.spawned.Add(1)
	wg.Go(fn)
	return true
}

func (r *Runner) run(id uuid.UUID, fn func()) {
	var pc panics.Catcher
	pc.Try(fn)
	r.completed.Add(1)

	if rec := pc.Recovered(); rec != nil {
		err := rec.AsError()
		r.panicMu.Lock()
		r.panics = append(r.panics, err)
		r.panicMu.Unlock()
		r.logger.Error("task panicked", "task_id", id, "error", err)
		if r.hooks.OnPanic != nil {
			r.hooks.OnPanic(id, err)
		}
		return
	}

	r.logger.Debug("task completed", "task_id", id)
	if r.hooks.OnComplete != nil {
		r.hooks.OnComplete(id)
	}
}

// Stats returns the number of spawned and completed tasks.
func (r *Runner) Stats() (spawned, completed int64) {
	return r.spawned.Load(), r.completed.Load()
}

// Shutdown cancels the runner context and waits for running tasks. It
// returns the panics recovered from tasks, joined. Calling it twice is safe.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.logger.Debug("shutting down task runner")
	r.cancel()
	// Every queued task is in the pool once queued.Wait returns, and no
	// new ones are admitted after closed is set.
	r.queued.Wait()
	r.pool.Wait()
	r.blocking.Wait()

	r.panicMu.Lock()
	defer r.panicMu.Unlock()
	return stderrors.Join(r.panics...)
}

// SpawnBlockingOn runs fn on r outside the worker bound and returns a channel
// that yields its result once.
func SpawnBlockingOn[R any](r *Runner, fn func() R) <-chan R {
	out := make(chan R, 1)
	id := uuid.New()
	admitted := r.admit(&r.blocking, func() {
		r.run(id, func() { out <- fn() })
	})
	if !admitted {
		panic(errors.New(errors.CodeRunnerNotInit).WithOp("tasks.SpawnBlocking"))
	}
	return out
}
