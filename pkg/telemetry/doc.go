// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// used by the frame driver, the task runner and futures.
//
// Metrics are instance-based so tests and multiple drivers can use separate
// registries:
//
//	m := telemetry.NewMetrics(
//	    telemetry.WithNamespace("myapp"),
//	    telemetry.WithRegistry(reg),
//	)
//	manager := update.NewManager(update.WithObserver(m.ObserveFlags))
//	runner := tasks.New(cfg, tasks.WithHooks(m.TaskHooks()))
//
// Tracing uses the global OpenTelemetry tracer provider unless one is given.
// Configure it in main() before starting the driver:
//
//	otel.SetTracerProvider(tp)
package telemetry
