package update

import "sync/atomic"

// Manager accumulates Flags between frames.
//
// Any goroutine may Insert, including task runner goroutines completing
// futures. The frame driver is the only caller of Drain. A Manager is owned by
// the application and passed by pointer; there is no global instance.
type Manager struct {
	flags    atomic.Uint32
	observer func(Flags)
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver registers fn to be called with every inserted set, on the
// inserting goroutine. fn must be cheap and safe for concurrent use.
func WithObserver(fn func(Flags)) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Insert ORs flags into the pending set. It never blocks.
func (m *Manager) Insert(flags Flags) {
	if flags == None {
		return
	}
	m.flags.Or(uint32(flags))
	if m.observer != nil {
		m.observer(flags)
	}
}

// Peek returns the pending set without clearing it.
func (m *Manager) Peek() Flags {
	return Flags(m.flags.Load())
}

// Drain returns the pending set and clears it in one atomic step. A flag
// inserted concurrently is either part of the result or survives for the
// next Drain.
func (m *Manager) Drain() Flags {
	return Flags(m.flags.Swap(0))
}
