package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/lumen/pkg/app"
	"github.com/vango-dev/lumen/pkg/layout"
	"github.com/vango-dev/lumen/pkg/ref"
	"github.com/vango-dev/lumen/pkg/render"
	"github.com/vango-dev/lumen/pkg/signal"
	"github.com/vango-dev/lumen/pkg/update"
)

// Demo tree: a column (1) holding a title (2), a counter label (3) and a
// status line (4).
const (
	nodeColumn layout.NodeID = iota + 1
	nodeTitle
	nodeCounter
	nodeStatus
)

// demoEngine lays out a fixed column of rows.
type demoEngine struct {
	rowHeight float32
	rects     map[layout.NodeID]render.Rect
}

func newDemoEngine() *demoEngine {
	return &demoEngine{rowHeight: 24, rects: make(map[layout.NodeID]render.Rect)}
}

func (e *demoEngine) Parents() map[layout.NodeID]layout.NodeID {
	return map[layout.NodeID]layout.NodeID{
		nodeTitle:   nodeColumn,
		nodeCounter: nodeColumn,
		nodeStatus:  nodeColumn,
	}
}

func (e *demoEngine) Compute(node layout.NodeID, ctx layout.Context) error {
	if node == nodeColumn {
		e.rects[node] = render.Rect{Width: ctx.AvailableWidth, Height: ctx.AvailableHeight}
		return nil
	}
	row := float32(node - nodeTitle)
	e.rects[node] = render.Rect{Y: row * e.rowHeight, Width: ctx.AvailableWidth, Height: e.rowHeight}
	return nil
}

// demoWidget counts to target while a slow load runs, then exits.
type demoWidget struct {
	engine *demoEngine
	target int

	count  *signal.State[int]
	label  *signal.Eval[string]
	status *signal.Future[string]

	lastLabel  string
	lastStatus string
}

func newDemoWidget(ctx *app.Context, engine *demoEngine, target int, loadDelay time.Duration) *demoWidget {
	count := app.UseState(ctx, 0)
	label := app.UseEval(ctx, func() string {
		return fmt.Sprintf("count: %d", signal.Value[int](count))
	})
	count.Listen(func(*ref.Ref[int]) { label.Invalidate() })

	w := &demoWidget{
		engine: engine,
		target: target,
		count:  count,
		label:  label,
		status: app.UseFuture(ctx, func(c context.Context) (string, error) {
			select {
			case <-time.After(loadDelay):
				return "loaded", nil
			case <-c.Done():
				return "", c.Err()
			}
		}),
	}
	ctx.Layout().RegisterWidget("column/counter", nodeCounter)
	ctx.Layout().RegisterWidget("column/status", nodeStatus)
	ctx.Layout().MarkDirty(nodeColumn)
	return w
}

// tick increments the counter from a runner goroutine.
func (w *demoWidget) tick(ctx *app.Context, every time.Duration) {
	ctx.Spawner().Spawn(func(c context.Context) {
		t := time.NewTicker(every)
		defer t.Stop()
		for i := 0; i < w.target; i++ {
			select {
			case <-c.Done():
				return
			case <-t.C:
				w.count.Update(func(n int) int { return n + 1 })
			}
		}
	})
}

func (w *demoWidget) Update(ctx *app.Context) update.Flags {
	flags := update.Draw

	if label := signal.Value[string](w.label); label != w.lastLabel {
		w.lastLabel = label
		ctx.Layout().MarkWidgetDirty("column/counter")
		flags |= update.Layout
	}
	if status := w.status.State().String(); status != w.lastStatus {
		w.lastStatus = status
		ctx.Layout().MarkWidgetDirty("column/status")
		flags |= update.Layout
	}

	if signal.Value[int](w.count) >= w.target && !w.status.State().IsLoading() {
		ctx.Logger().Info("demo finished", "label", w.lastLabel, "status", w.lastStatus)
		ctx.Exit()
	}
	return flags
}

func (w *demoWidget) Render(g render.Graphics) {
	g.PushLayer(w.engine.rects[nodeColumn], 1)
	g.Fill(w.engine.rects[nodeTitle], render.RGB(0x20, 0x20, 0x28))
	g.Fill(w.engine.rects[nodeCounter], render.RGB(0x30, 0x60, 0xa0))
	if w.status.State().IsReady() {
		g.Fill(w.engine.rects[nodeStatus], render.RGB(0x30, 0xa0, 0x60))
	} else {
		g.Stroke(w.engine.rects[nodeStatus], render.RGB(0xa0, 0xa0, 0xa0), 1)
	}
	g.PopLayer()
}
