package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/lumen/internal/errors"
)

func TestWriteAndRead(t *testing.T) {
	var m RWMutex
	value := 0

	m.Write("test", func() { value = 42 })

	m.RLock("test")
	got := value
	m.RUnlock()

	assert.Equal(t, 42, got)
	assert.False(t, m.Poisoned())
}

func TestConcurrentReaders(t *testing.T) {
	var m RWMutex
	m.RLock("a")
	done := make(chan struct{})
	go func() {
		m.RLock("b")
		m.RUnlock()
		close(done)
	}()
	<-done
	m.RUnlock()
}

func TestPanicPoisons(t *testing.T) {
	var m RWMutex

	require.PanicsWithValue(t, "boom", func() {
		m.Write("writer", func() { panic("boom") })
	})
	assert.True(t, m.Poisoned())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*errors.Error)
		require.True(t, ok, "expected *errors.Error, got %T", r)
		assert.Equal(t, errors.CodeLockPoisoned, err.Code)
		assert.Equal(t, "reader", err.Op)
	}()
	m.RLock("reader")
	t.Fatal("RLock on a poisoned lock must panic")
}

func TestPoisonedWriteFailsFast(t *testing.T) {
	var m RWMutex
	assert.Panics(t, func() { m.Write("w", func() { panic("x") }) })

	ran := false
	assert.Panics(t, func() { m.Write("w", func() { ran = true }) })
	assert.False(t, ran, "closure must not run on a poisoned lock")
}

func TestWriteExclusive(t *testing.T) {
	var m RWMutex
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Write("inc", func() { counter++ })
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
