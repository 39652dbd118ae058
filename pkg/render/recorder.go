package render

import (
	"fmt"
	"sync"
)

// OpKind identifies a recorded drawing operation.
type OpKind string

const (
	OpFill      OpKind = "fill"
	OpStroke    OpKind = "stroke"
	OpPushLayer OpKind = "push_layer"
	OpPopLayer  OpKind = "pop_layer"
)

// Op is one recorded drawing operation.
type Op struct {
	Kind  OpKind  `json:"kind"`
	Rect  Rect    `json:"rect"`
	Color Color   `json:"color"`
	Width float32 `json:"width,omitempty"`
	Alpha float32 `json:"alpha,omitempty"`
	Depth int     `json:"depth"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpFill:
		return fmt.Sprintf("fill %s %s", o.Rect, o.Color.Hex())
	case OpStroke:
		return fmt.Sprintf("stroke %s %s w=%g", o.Rect, o.Color.Hex(), o.Width)
	case OpPushLayer:
		return fmt.Sprintf("push %s a=%g", o.Rect, o.Alpha)
	default:
		return string(o.Kind)
	}
}

// Recorder is a headless Graphics that logs every operation.
type Recorder struct {
	mu    sync.Mutex
	ops   []Op
	depth int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	op.Depth = r.depth
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Fill implements Graphics.
func (r *Recorder) Fill(rect Rect, color Color) {
	r.record(Op{Kind: OpFill, Rect: rect, Color: color})
}

// Stroke implements Graphics.
func (r *Recorder) Stroke(rect Rect, color Color, width float32) {
	r.record(Op{Kind: OpStroke, Rect: rect, Color: color, Width: width})
}

// PushLayer implements Graphics.
func (r *Recorder) PushLayer(clip Rect, alpha float32) {
	r.record(Op{Kind: OpPushLayer, Rect: clip, Alpha: alpha})
	r.mu.Lock()
	r.depth++
	r.mu.Unlock()
}

// PopLayer implements Graphics. Popping with no open layer panics.
func (r *Recorder) PopLayer() {
	r.mu.Lock()
	if r.depth == 0 {
		r.mu.Unlock()
		panic("render: PopLayer without matching PushLayer")
	}
	r.depth--
	r.mu.Unlock()
	r.record(Op{Kind: OpPopLayer})
}

// Ops returns a copy of the recorded operations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Depth returns the number of open layers.
func (r *Recorder) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

// Reset drops all recorded operations. Open layers stay open.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = r.ops[:0]
	r.mu.Unlock()
}
