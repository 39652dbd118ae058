package ref

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwned(t *testing.T) {
	r := Owned(7)
	assert.Equal(t, KindOwned, r.Kind())
	assert.Equal(t, 7, r.Get())
	r.Release()
	assert.False(t, r.Released(), "release is a no-op for owned refs")
	assert.Equal(t, 7, r.Into())
}

func TestBorrowedSeesOwnerStorage(t *testing.T) {
	v := "a"
	r := Borrowed(&v)
	assert.Equal(t, KindBorrowed, r.Kind())
	assert.Equal(t, "a", r.Get())
}

func TestShared(t *testing.T) {
	v := []int{1, 2}
	r := Shared(&v)
	assert.Equal(t, KindShared, r.Kind())
	assert.Equal(t, []int{1, 2}, r.Get())
}

func TestGuardedReleasesOnce(t *testing.T) {
	var mu sync.RWMutex
	v := 3
	calls := 0

	mu.RLock()
	r := Guarded(&v, func() {
		calls++
		mu.RUnlock()
	})
	assert.Equal(t, KindGuarded, r.Kind())
	assert.Equal(t, 3, r.Into())
	r.Release()

	assert.Equal(t, 1, calls)
	assert.True(t, r.Released())

	// The write lock must be obtainable once the guard is released.
	mu.Lock()
	v = 4
	mu.Unlock()
}

func TestMap(t *testing.T) {
	released := false
	v := 10
	r := Guarded(&v, func() { released = true })

	m := Map(r, func(n int) string {
		if n == 10 {
			return "ten"
		}
		return "?"
	})

	assert.True(t, released)
	assert.Equal(t, KindOwned, m.Kind())
	assert.Equal(t, "ten", m.Get())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "guarded", KindGuarded.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
