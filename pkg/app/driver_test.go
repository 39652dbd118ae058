package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/lumen/pkg/layout"
	"github.com/vango-dev/lumen/pkg/render"
	"github.com/vango-dev/lumen/pkg/update"
)

type fakeEngine struct {
	parents  map[layout.NodeID]layout.NodeID
	computed []layout.NodeID
	last     layout.Context
	fail     layout.NodeID
}

func (e *fakeEngine) Compute(node layout.NodeID, ctx layout.Context) error {
	if node == e.fail {
		return errors.New("measure failed")
	}
	e.computed = append(e.computed, node)
	e.last = ctx
	return nil
}

func (e *fakeEngine) Parents() map[layout.NodeID]layout.NodeID {
	return e.parents
}

type testWidget struct {
	updates int
	renders int
	result  update.Flags
}

func (w *testWidget) Update(*Context) update.Flags {
	w.updates++
	return w.result
}

func (w *testWidget) Render(g render.Graphics) {
	w.renders++
	g.Fill(render.Rect{Width: 10, Height: 10}, render.RGB(0, 0, 0))
}

type sinkFunc func(FrameReport)

func (f sinkFunc) PublishFrame(r FrameReport) { f(r) }

func newTestDriver(w Widget, opts ...DriverOption) (*Context, *Driver) {
	c := NewContext(WithSpawner(inlineSpawner))
	return c, NewDriver(c, w, opts...)
}

func TestFrameIdle(t *testing.T) {
	w := &testWidget{}
	_, d := newTestDriver(w, WithGraphics(render.NewRecorder()))

	report, err := d.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, report.Outcome)
	assert.Zero(t, w.updates)
	assert.Zero(t, w.renders)
}

func TestFramePhaseGating(t *testing.T) {
	tests := []struct {
		name        string
		flags       update.Flags
		result      update.Flags
		wantUpdate  bool
		wantRender  bool
		wantOutcome string
	}{
		{"draw only", update.Draw, update.None, false, true, OutcomeRendered},
		{"eval only", update.Eval, update.None, true, false, OutcomeUpdated},
		{"eval requests draw", update.Eval, update.Draw, true, true, OutcomeRendered},
		{"force", update.Force, update.None, true, true, OutcomeRendered},
		{"focus", update.Focus, update.None, false, false, OutcomeUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &testWidget{result: tt.result}
			rec := render.NewRecorder()
			c, d := newTestDriver(w, WithGraphics(rec))
			c.Update().Insert(tt.flags)

			report, err := d.Frame(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantUpdate, w.updates == 1)
			assert.Equal(t, tt.wantRender, w.renders == 1)
			assert.Equal(t, tt.wantOutcome, report.Outcome)
			assert.Equal(t, update.None, c.Update().Peek(), "frame drains once")
		})
	}
}

func TestFrameExit(t *testing.T) {
	w := &testWidget{}
	c, d := newTestDriver(w)
	c.Update().Insert(update.Exit | update.Eval)

	report, err := d.Frame(context.Background())
	assert.ErrorIs(t, err, ErrExit)
	assert.Equal(t, OutcomeExit, report.Outcome)
	assert.Zero(t, w.updates)
}

func TestFrameExitFromUpdate(t *testing.T) {
	w := &testWidget{result: update.Exit}
	c, d := newTestDriver(w)
	c.Update().Insert(update.Eval)

	_, err := d.Frame(context.Background())
	assert.ErrorIs(t, err, ErrExit)
}

func TestFrameLayoutPass(t *testing.T) {
	// 1 -> 2 -> 3
	engine := &fakeEngine{parents: map[layout.NodeID]layout.NodeID{3: 2, 2: 1}}
	w := &testWidget{}
	rec := render.NewRecorder()
	c, d := newTestDriver(w, WithEngine(engine), WithGraphics(rec), WithViewport(800, 600))

	c.Relayout(3, layout.DirtyContent)
	report, err := d.Frame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []layout.NodeID{1, 2, 3}, engine.computed, "ancestors first")
	assert.Equal(t, 3, report.LaidOut)
	assert.True(t, report.Drawn, "layout implies draw")
	assert.Equal(t, 1, report.DrawOps)
	assert.Equal(t, float32(800), engine.last.AvailableWidth)
	assert.Equal(t, layout.PhaseLayout, engine.last.Phase)
	assert.Empty(t, c.Layout().DirtyNodes())

	m := c.Layout().Metrics()
	assert.Equal(t, 3, m.NodesInvalidated)
	assert.Equal(t, 3, m.NodesRecomputed)
	assert.Equal(t, 1.0, m.EfficiencyRatio())
}

func TestFrameLayoutError(t *testing.T) {
	engine := &fakeEngine{parents: map[layout.NodeID]layout.NodeID{}, fail: 5}
	c, d := newTestDriver(&testWidget{}, WithEngine(engine))
	c.Relayout(5, layout.DirtyAll)

	report, err := d.Frame(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeError, report.Outcome)
	assert.True(t, c.Layout().IsDirty(5), "failed node stays dirty")
}

func TestFrameResizeRecomputesRoots(t *testing.T) {
	engine := &fakeEngine{parents: map[layout.NodeID]layout.NodeID{2: 1, 3: 1}}
	_, d := newTestDriver(&testWidget{}, WithEngine(engine))

	d.Resize(320, 240)
	_, err := d.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []layout.NodeID{1}, engine.computed)
	assert.Equal(t, float32(240), engine.last.AvailableHeight)
}

func TestFrameWithoutEngineClearsTracker(t *testing.T) {
	c, d := newTestDriver(&testWidget{})
	c.Layout().MarkDirty(9)

	report, err := d.Frame(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.LaidOut)
	assert.Zero(t, c.Layout().DirtyCount())
}

func TestFrameSink(t *testing.T) {
	var mu sync.Mutex
	var reports []FrameReport
	sink := sinkFunc(func(r FrameReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	})
	c, d := newTestDriver(&testWidget{}, WithSink(sink), WithGraphics(render.NewRecorder()))

	_, _ = d.Frame(context.Background())
	c.Update().Insert(update.Draw)
	_, _ = d.Frame(context.Background())

	require.Len(t, reports, 1, "idle frames are not published")
	assert.Equal(t, "DRAW", reports[0].Flags)
	assert.Equal(t, uint64(2), reports[0].Seq)
}

func TestRunStopsOnExit(t *testing.T) {
	w := &testWidget{}
	c, d := newTestDriver(w)
	count := UseState(c, 0)

	var onDriver bool
	w2 := WidgetFuncs{
		UpdateFunc: func(ctx *Context) update.Flags {
			onDriver = d.OnDriverGoroutine()
			ctx.Exit()
			return update.None
		},
	}
	d.root = w2

	count.SetValue(1)
	err := d.Run(context.Background(), time.Millisecond)
	require.NoError(t, err)
	assert.True(t, onDriver)
	assert.False(t, d.OnDriverGoroutine())
}

func TestRunMaxFrames(t *testing.T) {
	_, d := newTestDriver(&testWidget{}, WithMaxFrames(3))
	require.NoError(t, d.Run(context.Background(), time.Millisecond))
	assert.Equal(t, uint64(3), d.seq.Load())
}

func TestRunContextCancelled(t *testing.T) {
	_, d := newTestDriver(&testWidget{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Run(ctx, time.Millisecond), context.DeadlineExceeded)
}
