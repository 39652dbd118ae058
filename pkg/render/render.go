// Package render defines the drawing boundary between widgets and a
// rendering backend, plus a headless Recorder.
package render

import "fmt"

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Color is a non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// Hex returns the color as #rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Graphics is what a widget draws into. Layers nest; every PushLayer must be
// matched by a PopLayer.
type Graphics interface {
	Fill(rect Rect, color Color)
	Stroke(rect Rect, color Color, width float32)
	PushLayer(clip Rect, alpha float32)
	PopLayer()
}
