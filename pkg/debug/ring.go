package debug

import (
	"sync"

	"github.com/vango-dev/lumen/pkg/app"
)

// ring keeps the last N frame reports.
type ring struct {
	mu   sync.Mutex
	buf  []app.FrameReport
	next int
	full bool
}

func newRing(size int) *ring {
	if size <= 0 {
		size = 1
	}
	return &ring{buf: make([]app.FrameReport, size)}
}

func (r *ring) add(report app.FrameReport) {
	r.mu.Lock()
	r.buf[r.next] = report
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
}

// list returns the stored reports, oldest first.
func (r *ring) list() []app.FrameReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]app.FrameReport, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]app.FrameReport, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
