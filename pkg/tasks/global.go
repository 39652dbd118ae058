package tasks

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/lumen/internal/errors"
)

var current atomic.Pointer[Runner]

// Init installs a new default Runner, shutting down any previous one.
func Init(cfg Config, opts ...Option) *Runner {
	r := New(cfg, opts...)
	if old := current.Swap(r); old != nil {
		_ = old.Shutdown()
	}
	return r
}

// Default returns the default Runner, or nil before Init.
func Default() *Runner {
	return current.Load()
}

func mustDefault(op string) *Runner {
	r := current.Load()
	if r == nil {
		panic(errors.New(errors.CodeRunnerNotInit).
			WithOp(op).
			WithSuggestion("call tasks.Init at application startup"))
	}
	return r
}

// Spawn runs fn on the default Runner. It panics before Init.
func Spawn(fn func(ctx context.Context)) {
	mustDefault("tasks.Spawn").Spawn(fn)
}

// SpawnBlocking runs fn on the default Runner outside the worker bound.
// It panics before Init.
func SpawnBlocking[R any](fn func() R) <-chan R {
	return SpawnBlockingOn(mustDefault("tasks.SpawnBlocking"), fn)
}

// BlockOn runs fn to completion on the calling goroutine. With a default
// Runner fn receives its context; otherwise a background context.
func BlockOn[T any](fn func(ctx context.Context) T) T {
	ctx := context.Background()
	if r := current.Load(); r != nil {
		ctx = r.Context()
	}
	return fn(ctx)
}

// Shutdown removes and shuts down the default Runner.
func Shutdown() error {
	r := current.Swap(nil)
	if r == nil {
		slog.Debug("no task runner to shut down")
		return nil
	}
	return r.Shutdown()
}

// Global is a Spawner backed by the default Runner, resolved at spawn time.
var Global Spawner = SpawnerFunc(Spawn)
