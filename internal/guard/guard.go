// Package guard provides a read/write lock that poisons itself when a writer
// panics. After poisoning every acquisition panics with an E101 error, so a
// half-applied mutation is never observed.
package guard

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/lumen/internal/errors"
)

// RWMutex is a poisonable read/write lock. The zero value is ready to use.
type RWMutex struct {
	mu       sync.RWMutex
	poisoned atomic.Bool
}

// RLock acquires the read lock. It panics if the lock is poisoned.
func (m *RWMutex) RLock(op string) {
	m.check(op)
	m.mu.RLock()
}

// RUnlock releases the read lock.
func (m *RWMutex) RUnlock() {
	m.mu.RUnlock()
}

// Write runs fn under the exclusive lock. If fn panics the lock is poisoned,
// released, and the panic continues up the caller's stack.
func (m *RWMutex) Write(op string, fn func()) {
	m.check(op)
	m.mu.Lock()
	ok := false
	defer func() {
		if !ok {
			m.poisoned.Store(true)
		}
		m.mu.Unlock()
	}()
	fn()
	ok = true
}

// Poisoned reports whether a writer has panicked while holding the lock.
func (m *RWMutex) Poisoned() bool {
	return m.poisoned.Load()
}

func (m *RWMutex) check(op string) {
	if m.poisoned.Load() {
		panic(errors.New(errors.CodeLockPoisoned).WithOp(op))
	}
}
