package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/lumen/internal/logging"
	"github.com/vango-dev/lumen/pkg/app"
	"github.com/vango-dev/lumen/pkg/debug"
	"github.com/vango-dev/lumen/pkg/layout"
	"github.com/vango-dev/lumen/pkg/render"
	"github.com/vango-dev/lumen/pkg/tasks"
	"github.com/vango-dev/lumen/pkg/telemetry"
)

func runCmd() *cobra.Command {
	var (
		debugEnabled bool
		maxFrames    int
		target       int
		loadDelay    time.Duration
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the headless demo application",
		Long: `Run a headless application driven by the frame driver.

A counter state increments from a background task while a future
simulates a slow load. Each change flows through update flags into
update, layout and draw passes on a recording renderer. The app exits
when the counter reaches its target and the load has finished.

Examples:
  lumen run
  lumen run --debug --target 100
  LUMEN_LOG_LEVEL=debug lumen run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug.Enabled = debugEnabled
			}
			if cmd.Flags().Changed("max-frames") {
				cfg.Frame.MaxFrames = maxFrames
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			})
			if err != nil {
				return err
			}

			ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			metrics := telemetry.NewMetrics(
				telemetry.WithNamespace(cfg.Metrics.Namespace),
				telemetry.WithRegistry(reg),
			)

			tasks.Init(tasks.Config{Workers: cfg.Tasks.Workers},
				tasks.WithLogger(logger),
				tasks.WithHooks(metrics.TaskHooks()),
			)
			defer func() {
				if err := tasks.Shutdown(); err != nil {
					logger.Error("task runner reported panics", "error", err)
				}
			}()

			tracker := layout.NewTracker()
			reg.MustRegister(layout.NewCollector(tracker, cfg.Metrics.Namespace))

			appCtx := app.NewContext(
				app.WithTracker(tracker),
				app.WithLogger(logger),
				app.WithMetrics(metrics),
			)

			engine := newDemoEngine()
			widget := newDemoWidget(appCtx, engine, target, loadDelay)
			recorder := render.NewRecorder()

			opts := []app.DriverOption{
				app.WithEngine(engine),
				app.WithGraphics(recorder),
				app.WithViewport(320, 240),
				app.WithDriverMetrics(metrics),
				app.WithMaxFrames(cfg.Frame.MaxFrames),
				app.WithTracer(telemetry.NewTracer(
					telemetry.WithTracerName(cfg.Tracing.TracerName),
					telemetry.WithAttributes(attribute.String("lumen.app", "demo")),
				)),
			}

			var wg sync.WaitGroup
			serverCtx, stopServer := context.WithCancel(ctx)
			defer stopServer()
			if cfg.Debug.Enabled {
				srv := debug.New(tracker, debug.Config{
					Addr:     cfg.Debug.Addr,
					History:  cfg.Debug.History,
					Gatherer: reg,
					Logger:   logger,
				})
				if err := srv.Listen(); err != nil {
					return err
				}
				opts = append(opts, app.WithSink(srv))
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := srv.Serve(serverCtx); err != nil {
						logger.Error("debug server stopped", "error", err)
					}
				}()
				info("Debug server on http://%s", srv.Addr())
			}

			driver := app.NewDriver(appCtx, widget, opts...)
			widget.tick(appCtx, 2*cfg.Frame.Interval)

			start := time.Now()
			runErr := driver.Run(ctx, cfg.Frame.Interval)
			stopServer()
			wg.Wait()
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}

			m := tracker.Metrics()
			success("Finished in %s", time.Since(start).Round(time.Millisecond))
			info("Counter:        %s", widget.lastLabel)
			info("Status:         %s", widget.lastStatus)
			info("Draw ops:       %d", len(recorder.Ops()))
			info("Invalidated:    %d nodes", m.NodesInvalidated)
			info("Recomputed:     %d nodes", m.NodesRecomputed)
			info("Efficiency:     %.2f", m.EfficiencyRatio())
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugEnabled, "debug", false, "Serve the debug HTTP endpoints")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 0, "Stop after this many frames (0 = no limit)")
	cmd.Flags().IntVar(&target, "target", 10, "Counter value at which the demo exits")
	cmd.Flags().DurationVar(&loadDelay, "load-delay", 50*time.Millisecond, "Duration of the simulated load")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override log.level")

	return cmd
}
