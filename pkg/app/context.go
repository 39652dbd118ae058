package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/lumen/pkg/layout"
	"github.com/vango-dev/lumen/pkg/ref"
	"github.com/vango-dev/lumen/pkg/signal"
	"github.com/vango-dev/lumen/pkg/tasks"
	"github.com/vango-dev/lumen/pkg/telemetry"
	"github.com/vango-dev/lumen/pkg/update"
)

// Context is shared by the widgets of one application.
type Context struct {
	manager *update.Manager
	tracker *layout.Tracker
	spawner tasks.Spawner
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithManager sets the update Manager. By default a new one is created,
// observed by the metrics if any.
func WithManager(m *update.Manager) ContextOption {
	return func(c *Context) {
		c.manager = m
	}
}

// WithTracker sets the layout Tracker.
func WithTracker(t *layout.Tracker) ContextOption {
	return func(c *Context) {
		c.tracker = t
	}
}

// WithSpawner sets the task spawner used by futures. The default is the
// package-level task runner, which must be initialized with tasks.Init.
func WithSpawner(s tasks.Spawner) ContextOption {
	return func(c *Context) {
		c.spawner = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithMetrics records flag inserts and future completions.
func WithMetrics(m *telemetry.Metrics) ContextOption {
	return func(c *Context) {
		c.metrics = m
	}
}

// NewContext creates a Context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	if c.manager == nil {
		var mopts []update.Option
		if c.metrics != nil {
			mopts = append(mopts, update.WithObserver(c.metrics.ObserveFlags))
		}
		c.manager = update.NewManager(mopts...)
	}
	if c.tracker == nil {
		c.tracker = layout.NewTracker()
	}
	if c.spawner == nil {
		c.spawner = tasks.Global
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Update returns the update Manager.
func (c *Context) Update() *update.Manager { return c.manager }

// Layout returns the layout Tracker.
func (c *Context) Layout() *layout.Tracker { return c.tracker }

// Spawner returns the task spawner.
func (c *Context) Spawner() tasks.Spawner { return c.spawner }

// Logger returns the logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Exit asks the driver to stop after the current frame.
func (c *Context) Exit() {
	c.manager.Insert(update.Exit)
}

// Redraw asks for a draw without re-evaluation.
func (c *Context) Redraw() {
	c.manager.Insert(update.Draw)
}

// Relayout marks node dirty and asks for a layout pass.
func (c *Context) Relayout(node layout.NodeID, flags layout.DirtyFlags) {
	c.tracker.MarkDirtyWithFlags(node, flags)
	c.manager.Insert(update.Layout)
}

// Hook registers a listener on s that inserts EVAL on every notification.
func Hook[T any](c *Context, s signal.Signal[T]) {
	m := c.manager
	s.Listen(func(*ref.Ref[T]) {
		m.Insert(update.Eval)
	})
}

// UseState creates a hooked State.
func UseState[T any](c *Context, initial T) *signal.State[T] {
	s := signal.NewState(initial)
	Hook[T](c, s)
	return s
}

// UseMemoized creates a Memoized over factory.
func UseMemoized[T any](c *Context, factory func() T) *signal.Memoized[T] {
	s := signal.NewMemoized(factory)
	Hook[T](c, s)
	return s
}

// UseFixed creates a Fixed.
func UseFixed[T any](c *Context, value T) *signal.Fixed[T] {
	s := signal.NewFixed(value)
	Hook[T](c, s)
	return s
}

// UseEval creates an Eval over fn.
func UseEval[T any](c *Context, fn func() T) *signal.Eval[T] {
	s := signal.NewEval(fn)
	Hook[T](c, s)
	return s
}

// UseFuture spawns fn and returns a Future attached to the Context's
// Manager. Completion inserts EVAL|DRAW.
func UseFuture[T any](c *Context, fn func(ctx context.Context) (T, error), opts ...signal.FutureOption[T]) *signal.Future[T] {
	all := append([]signal.FutureOption[T]{signal.WithUpdateManager[T](c.manager)}, opts...)
	f := signal.NewFuture(c.spawner, fn, all...)
	if c.metrics != nil {
		metrics := c.metrics
		f.Listen(func(r *ref.Ref[signal.AsyncState[T]]) {
			metrics.RecordFuture(r.Get().Status().String())
		})
	}
	return f
}

// SpawnWithUpdate runs fn on the spawner and inserts flags when it returns.
func (c *Context) SpawnWithUpdate(fn func(ctx context.Context), flags update.Flags) {
	m := c.manager
	c.spawner.Spawn(func(ctx context.Context) {
		fn(ctx)
		m.Insert(flags)
	})
}

// SpawnWithRedraw is SpawnWithUpdate with DRAW.
func (c *Context) SpawnWithRedraw(fn func(ctx context.Context)) {
	c.SpawnWithUpdate(fn, update.Draw)
}

// SpawnWithTimeout runs fn with a context that expires after timeout. When
// fn returns, onDone receives its error, or context.DeadlineExceeded if the
// deadline passed first, and DRAW is inserted.
func (c *Context) SpawnWithTimeout(timeout time.Duration, fn func(ctx context.Context) error, onDone func(error)) {
	m := c.manager
	c.spawner.Spawn(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err := fn(ctx)
		if err == nil && ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		if onDone != nil {
			onDone(err)
		}
		m.Insert(update.Draw)
	})
}
