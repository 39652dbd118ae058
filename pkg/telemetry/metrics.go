package telemetry

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/lumen/pkg/tasks"
	"github.com/vango-dev/lumen/pkg/update"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "lumen").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for frame and phase durations.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// DefaultBuckets covers sub-millisecond phases up to a slow 100ms frame.
var DefaultBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .016, .033, .05, .1}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "lumen",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	flagsInserted  *prometheus.CounterVec
	framesTotal    *prometheus.CounterVec
	frameDuration  prometheus.Histogram
	phaseDuration  *prometheus.HistogramVec
	tasksTotal     *prometheus.CounterVec
	futuresTotal   *prometheus.CounterVec
	nodesRecompute prometheus.Counter
}

// NewMetrics creates and registers the metrics.
//
// Metrics collected:
//   - lumen_update_flags_inserted_total: flag inserts by flag name
//   - lumen_frames_total: frames by outcome (idle, rendered, exit, error)
//   - lumen_frame_duration_seconds: histogram of whole-frame duration
//   - lumen_phase_duration_seconds: histogram of update/layout/draw phases
//   - lumen_tasks_total: task runner events (spawned, completed, panicked)
//   - lumen_futures_total: future completions by terminal status
//   - lumen_layout_nodes_recomputed_total: nodes recomputed by layout passes
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flagsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_flags_inserted_total",
			Help:        "Update flags inserted into the update manager",
			ConstLabels: config.ConstLabels,
		}, []string{"flag"}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Frames processed by the frame driver",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_duration_seconds",
			Help:        "Frame duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "phase_duration_seconds",
			Help:        "Frame phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tasks_total",
			Help:        "Task runner events",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		futuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "futures_total",
			Help:        "Future completions by terminal status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		nodesRecompute: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "layout_nodes_recomputed_total",
			Help:        "Layout nodes recomputed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveFlags counts each flag set in flags. It matches the signature of
// update.WithObserver.
func (m *Metrics) ObserveFlags(flags update.Flags) {
	if m == nil {
		return
	}
	for _, name := range flags.Names() {
		m.flagsInserted.WithLabelValues(name).Inc()
	}
}

// RecordFrame records a finished frame.
func (m *Metrics) RecordFrame(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(outcome).Inc()
	m.frameDuration.Observe(d.Seconds())
}

// RecordPhase records the duration of one frame phase.
func (m *Metrics) RecordPhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordFuture records a future reaching status.
func (m *Metrics) RecordFuture(status string) {
	if m == nil {
		return
	}
	m.futuresTotal.WithLabelValues(status).Inc()
}

// RecordRecomputed adds n recomputed layout nodes.
func (m *Metrics) RecordRecomputed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.nodesRecompute.Add(float64(n))
}

// TaskHooks returns runner hooks that count task events.
func (m *Metrics) TaskHooks() tasks.Hooks {
	if m == nil {
		return tasks.Hooks{}
	}
	return tasks.Hooks{
		OnSpawn: func(uuid.UUID) {
			m.tasksTotal.WithLabelValues("spawned").Inc()
		},
		OnComplete: func(uuid.UUID) {
			m.tasksTotal.WithLabelValues("completed").Inc()
		},
		OnPanic: func(uuid.UUID, error) {
			m.tasksTotal.WithLabelValues("panicked").Inc()
		},
	}
}
