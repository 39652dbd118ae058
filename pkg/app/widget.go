package app

import (
	"github.com/vango-dev/lumen/pkg/render"
	"github.com/vango-dev/lumen/pkg/update"
)

// Widget is the root of a retained widget tree.
//
// Update runs when the frame has EVAL or FORCE set. It reads signals and
// returns the extra work it needs, typically LAYOUT and/or DRAW. Render
// draws the tree.
type Widget interface {
	Update(ctx *Context) update.Flags
	Render(g render.Graphics)
}

// WidgetFuncs adapts a pair of functions to Widget.
type WidgetFuncs struct {
	UpdateFunc func(ctx *Context) update.Flags
	RenderFunc func(g render.Graphics)
}

// Update implements Widget.
func (w WidgetFuncs) Update(ctx *Context) update.Flags {
	if w.UpdateFunc == nil {
		return update.None
	}
	return w.UpdateFunc(ctx)
}

// Render implements Widget.
func (w WidgetFuncs) Render(g render.Graphics) {
	if w.RenderFunc != nil {
		w.RenderFunc(g)
	}
}
