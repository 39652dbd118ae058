// Package tasks runs background work for the UI core.
//
// A Runner is a bounded worker pool. Spawn never blocks, so tasks may spawn
// tasks; Workers only bounds how many run at once. Future signals hand their
// computation to a Spawner; the frame driver never waits on them. The package also keeps a
// process-wide default Runner, set up once at startup:
//
//	tasks.Init(tasks.Config{Workers: 4})
//	defer tasks.Shutdown()
//
//	tasks.Spawn(func(ctx context.Context) { ... })
//	v := tasks.BlockOn(func(ctx context.Context) int { return 42 })
//	out := <-tasks.SpawnBlocking(func() string { return "done" })
//
// Spawning before Init is a programming error and panics with code E102.
// BlockOn works without a runner and simply runs inline.
package tasks
