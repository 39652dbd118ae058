package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/lumen/pkg/layout"
	"github.com/vango-dev/lumen/pkg/render"
	"github.com/vango-dev/lumen/pkg/telemetry"
	"github.com/vango-dev/lumen/pkg/update"
)

// ErrExit is returned by Frame when EXIT was requested.
var ErrExit = errors.New("lumen: exit requested")

// Frame outcomes, as reported in FrameReport.Outcome and frame metrics.
const (
	OutcomeIdle     = "idle"
	OutcomeUpdated  = "updated"
	OutcomeRendered = "rendered"
	OutcomeExit     = "exit"
	OutcomeError    = "error"
)

// FrameReport describes one frame.
type FrameReport struct {
	Seq      uint64        `json:"seq"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration_ns"`
	Flags    string        `json:"flags"`
	Outcome  string        `json:"outcome"`

	Updated bool   `json:"updated"`
	LaidOut int    `json:"laid_out"`
	Drawn   bool   `json:"drawn"`
	DrawOps int    `json:"draw_ops,omitempty"`
	Dirty   int    `json:"dirty_after"`
	Error   string `json:"error,omitempty"`

	UpdateTime time.Duration `json:"update_ns"`
	LayoutTime time.Duration `json:"layout_ns"`
	DrawTime   time.Duration `json:"draw_ns"`
}

// FrameSink receives a report for every non-idle frame.
type FrameSink interface {
	PublishFrame(report FrameReport)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithEngine sets the layout engine. Without one a layout pass only clears
// the tracker.
func WithEngine(e layout.Engine) DriverOption {
	return func(d *Driver) {
		d.engine = e
	}
}

// WithGraphics sets the draw target. Without one nothing is drawn.
func WithGraphics(g render.Graphics) DriverOption {
	return func(d *Driver) {
		d.graphics = g
	}
}

// WithViewport sets the space available to the root node.
func WithViewport(width, height float32) DriverOption {
	return func(d *Driver) {
		d.width = width
		d.height = height
	}
}

// WithTracer sets the tracer for frame and phase spans.
func WithTracer(t *telemetry.Tracer) DriverOption {
	return func(d *Driver) {
		d.tracer = t
	}
}

// WithDriverMetrics records frame metrics.
func WithDriverMetrics(m *telemetry.Metrics) DriverOption {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithSink publishes frame reports to sink.
func WithSink(sink FrameSink) DriverOption {
	return func(d *Driver) {
		d.sink = sink
	}
}

// WithMaxFrames stops Run after n frames. Zero means no limit.
func WithMaxFrames(n int) DriverOption {
	return func(d *Driver) {
		d.maxFrames = n
	}
}

// Driver runs frames for a widget tree.
type Driver struct {
	app      *Context
	root     Widget
	engine   layout.Engine
	graphics render.Graphics
	tracer   *telemetry.Tracer
	metrics  *telemetry.Metrics
	sink     FrameSink
	logger   *slog.Logger

	viewMu        sync.Mutex
	width, height float32
	maxFrames     int

	seq  atomic.Uint64
	goid atomic.Int64
}

// NewDriver creates a Driver for root.
func NewDriver(app *Context, root Widget, opts ...DriverOption) *Driver {
	d := &Driver{
		app:    app,
		root:   root,
		logger: app.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = telemetry.NewTracer()
	}
	return d
}

// Resize sets a new viewport and requests a RESIZE frame.
func (d *Driver) Resize(width, height float32) {
	d.viewMu.Lock()
	d.width = width
	d.height = height
	d.viewMu.Unlock()
	d.app.manager.Insert(update.Resize)
}

// OnDriverGoroutine reports whether the caller is the goroutine running Run.
func (d *Driver) OnDriverGoroutine() bool {
	id := d.goid.Load()
	return id != 0 && id == goid.Get()
}

// Frame runs one frame. It drains the Manager exactly once, then:
//   - EXIT: returns ErrExit without further work
//   - EVAL or FORCE: calls the root's Update and ORs in its result
//   - LAYOUT, FORCE, RESIZE or dirty tracker nodes: runs a layout pass over
//     the dirty nodes, ancestors first, then implies DRAW
//   - DRAW or FORCE: renders the root
func (d *Driver) Frame(ctx context.Context) (FrameReport, error) {
	start := time.Now()
	flags := d.app.manager.Drain()
	tracker := d.app.tracker

	report := FrameReport{
		Seq:   d.seq.Add(1),
		Start: start,
	}

	if flags.IsEmpty() && tracker.DirtyCount() == 0 {
		report.Flags = flags.String()
		report.Outcome = OutcomeIdle
		d.metrics.RecordFrame(OutcomeIdle, time.Since(start))
		return report, nil
	}

	ctx, span := d.tracer.Start(ctx, "lumen.frame",
		attribute.Int64("lumen.frame.seq", int64(report.Seq)),
		attribute.String("lumen.frame.flags", flags.String()),
	)

	err := d.runFrame(ctx, &flags, &report)

	report.Flags = flags.String()
	report.Duration = time.Since(start)
	report.Dirty = tracker.DirtyCount()
	switch {
	case errors.Is(err, ErrExit):
		report.Outcome = OutcomeExit
	case err != nil:
		report.Outcome = OutcomeError
		report.Error = err.Error()
	case report.Drawn:
		report.Outcome = OutcomeRendered
	default:
		report.Outcome = OutcomeUpdated
	}
	span.SetAttributes(attribute.String("lumen.frame.outcome", report.Outcome))
	if errors.Is(err, ErrExit) {
		telemetry.End(span, nil)
	} else {
		telemetry.End(span, err)
	}

	d.metrics.RecordFrame(report.Outcome, report.Duration)
	d.logger.Debug("frame",
		"seq", report.Seq,
		"flags", report.Flags,
		"outcome", report.Outcome,
		"duration", report.Duration,
	)
	if d.sink != nil {
		d.sink.PublishFrame(report)
	}
	return report, err
}

func (d *Driver) runFrame(ctx context.Context, flags *update.Flags, report *FrameReport) error {
	if flags.Has(update.Exit) {
		return ErrExit
	}

	if flags.Has(update.Eval | update.Force) {
		phaseStart := time.Now()
		_, span := d.tracer.Start(ctx, "lumen.update")
		*flags |= d.root.Update(d.app)
		telemetry.End(span, nil)
		report.Updated = true
		report.UpdateTime = time.Since(phaseStart)
		d.metrics.RecordPhase("update", report.UpdateTime)

		if flags.Has(update.Exit) {
			return ErrExit
		}
	}

	if flags.Has(update.Layout|update.Force|update.Resize) || d.app.tracker.DirtyCount() > 0 {
		phaseStart := time.Now()
		lctx, span := d.tracer.Start(ctx, "lumen.layout")
		n, err := d.layoutPass(lctx, *flags)
		telemetry.End(span, err)
		report.LaidOut = n
		report.LayoutTime = time.Since(phaseStart)
		d.app.tracker.RecordLayoutTime(report.LayoutTime)
		d.metrics.RecordPhase("layout", report.LayoutTime)
		d.metrics.RecordRecomputed(n)
		if err != nil {
			return err
		}
		*flags |= update.Draw
	}

	if flags.Has(update.Draw|update.Force) && d.graphics != nil {
		phaseStart := time.Now()
		_, span := d.tracer.Start(ctx, "lumen.draw")
		counter := &countingGraphics{Graphics: d.graphics}
		d.root.Render(counter)
		telemetry.End(span, nil)
		report.Drawn = true
		report.DrawOps = counter.ops
		report.DrawTime = time.Since(phaseStart)
		d.metrics.RecordPhase("draw", report.DrawTime)
	}
	return nil
}

// layoutPass recomputes every dirty node and returns how many it recomputed.
// A RESIZE or FORCE frame with a clean tracker recomputes the roots.
func (d *Driver) layoutPass(ctx context.Context, flags update.Flags) (int, error) {
	tracker := d.app.tracker
	if d.engine == nil {
		tracker.ClearAll()
		return 0, nil
	}

	parents := d.engine.Parents()
	for _, node := range tracker.DirtyNodes() {
		tracker.PropagateDirtyUp(node, parents)
	}
	if flags.Has(update.Resize|update.Force) && tracker.DirtyCount() == 0 {
		for _, root := range roots(parents) {
			tracker.MarkDirtyWithFlags(root, layout.DirtyGeometry)
		}
	}

	nodes := tracker.DirtyNodes()
	layout.SortParentsFirst(nodes, parents)

	d.viewMu.Lock()
	lctx := layout.Context{
		AvailableWidth:  d.width,
		AvailableHeight: d.height,
		Phase:           layout.PhaseLayout,
	}
	d.viewMu.Unlock()
	recomputed := 0
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return recomputed, err
		}
		if err := d.engine.Compute(node, lctx); err != nil {
			return recomputed, err
		}
		tracker.MarkClean(node)
		tracker.RecordRecomputation()
		recomputed++
	}
	return recomputed, nil
}

// roots returns the nodes that appear as a parent but have none themselves.
func roots(parents map[layout.NodeID]layout.NodeID) []layout.NodeID {
	var out []layout.NodeID
	seen := make(map[layout.NodeID]struct{})
	for _, p := range parents {
		if _, ok := parents[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	layout.SortParentsFirst(out, parents)
	return out
}

// Run runs frames every interval on the calling goroutine until EXIT is
// requested, ctx is done or the frame limit is reached. EXIT returns nil.
// Frame errors other than ErrExit are logged and the loop continues.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	d.goid.Store(goid.Get())
	defer d.goid.Store(0)

	d.logger.Info("frame driver started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		_, err := d.Frame(ctx)
		switch {
		case errors.Is(err, ErrExit):
			d.logger.Info("frame driver exiting", "frames", frames+1)
			return nil
		case err != nil:
			d.logger.Error("frame failed", "error", err)
		}

		frames++
		if d.maxFrames > 0 && frames >= d.maxFrames {
			d.logger.Info("frame limit reached", "frames", frames)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// countingGraphics counts draw calls on their way to the real target.
type countingGraphics struct {
	render.Graphics
	ops int
}

func (g *countingGraphics) Fill(rect render.Rect, color render.Color) {
	g.ops++
	g.Graphics.Fill(rect, color)
}

func (g *countingGraphics) Stroke(rect render.Rect, color render.Color, width float32) {
	g.ops++
	g.Graphics.Stroke(rect, color, width)
}
