// Package app connects signals to the frame driver.
//
// A Context owns the update Manager, the layout Tracker and the task
// spawner. Signals created through the Context are hooked: notifying them
// inserts EVAL so the next frame re-evaluates the widget tree.
//
//	ctx := app.NewContext(app.WithSpawner(runner))
//	count := app.UseState(ctx, 0)
//	user := app.UseFuture(ctx, fetchUser)
//
// The Driver runs frames on a single goroutine. Each frame drains the
// Manager once and runs, as the flags require, widget update, a layout pass
// over the dirty nodes and a draw.
//
//	driver := app.NewDriver(ctx, root,
//	    app.WithEngine(engine),
//	    app.WithGraphics(gpu),
//	)
//	err := driver.Run(context.Background(), 16*time.Millisecond)
package app
