package signal

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/ref"
)

func TestDerivedCachesUntilNotify(t *testing.T) {
	computations := 0
	count := NewState(5)
	doubled := NewDerived[int, int](count, func(r *ref.Ref[int]) int {
		computations++
		return r.Get() * 2
	})

	// First read computes
	if got := Value[int](doubled); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	// Second read uses cache
	if got := Value[int](doubled); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}

	count.SetValue(7)
	if got := Value[int](doubled); got != 10 {
		t.Errorf("source change without Notify on the derived keeps the cache, got %d", got)
	}

	doubled.Notify()
	if got := Value[int](doubled); got != 14 {
		t.Errorf("expected 14 after notify, got %d", got)
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestDerivedNotifyBumpsGenerationOnly(t *testing.T) {
	computations := 0
	d := Derive(NewState(1), func(n int) int {
		computations++
		return n
	})

	before := d.Generation()
	d.Notify()
	d.Notify()
	if d.Generation() != before+2 {
		t.Errorf("expected generation %d, got %d", before+2, d.Generation())
	}
	if computations != 0 {
		t.Errorf("notify must not recompute eagerly, got %d computations", computations)
	}
}

func TestDerivedNotifyForwardsToSource(t *testing.T) {
	count := NewState(1)
	calls := 0
	count.Listen(func(*ref.Ref[int]) { calls++ })

	d := Derive(count, func(n int) string { return strings.Repeat("x", n) })
	d.Notify()

	if calls != 1 {
		t.Errorf("expected source listener to fire once, got %d", calls)
	}
}

func TestDerivedReadOnly(t *testing.T) {
	count := NewState(2)
	d := Derive(count, func(n int) int { return n + 1 })

	d.SetValue(100)
	d.Listen(func(*ref.Ref[int]) { t.Error("listener on derived must never fire") })
	d.Notify()

	if got := Value[int](d); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	// Mutation goes through the source accessor.
	d.Source().SetValue(4)
	d.Notify()
	if got := Value[int](d); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := d.GetSource().Into(); got != 4 {
		t.Errorf("expected source 4, got %d", got)
	}
}

func TestDerivedRecomputePanicRetries(t *testing.T) {
	fail := true
	calls := 0
	d := Derive(NewState(1), func(n int) int {
		calls++
		if fail {
			panic("compute failed")
		}
		return n * 10
	})

	func() {
		defer func() {
			if r := recover(); r != "compute failed" {
				t.Errorf("expected compute panic to propagate, got %v", r)
			}
		}()
		d.Get()
	}()

	fail = false
	if got := Value[int](d); got != 10 {
		t.Errorf("expected retry to succeed with 10, got %d", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestTryValue(t *testing.T) {
	d := Derive(NewState(0), func(n int) int { panic("bad") })
	_, err := TryValue[int](d)
	if !errors.HasCode(err, errors.CodeRecomputePanicked) {
		t.Errorf("expected E103, got %v", err)
	}

	v, err := TryValue[int](NewState(3))
	if err != nil || v != 3 {
		t.Errorf("expected 3, nil; got %d, %v", v, err)
	}
}

func TestTryValueDoesNotSwallowPoison(t *testing.T) {
	s := NewState(0)
	func() {
		defer func() { recover() }()
		s.Mutate(func(*int) { panic("x") })
	}()
	assertPoisonPanic(t, func() { _, _ = TryValue[int](s) })
}

func TestMapCachesAndExposesInner(t *testing.T) {
	calls := 0
	inner := NewState([]int{1, 2, 3})
	length := NewMap[[]int, int](inner, func(r *ref.Ref[[]int]) *ref.Ref[int] {
		calls++
		return ref.Owned(len(r.Get()))
	})

	if got := Value[int](length); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	_ = Value[int](length)
	if calls != 1 {
		t.Errorf("expected 1 mapping call, got %d", calls)
	}

	length.Signal().SetValue([]int{1})
	length.Notify()
	if got := Value[int](length); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := len(length.GetUnmapped().Into()); got != 1 {
		t.Errorf("expected unmapped length 1, got %d", got)
	}

	length.SetValue(42)
	if got := Value[int](length); got != 1 {
		t.Errorf("SetValue on map must be a no-op, got %d", got)
	}
}

func TestMapOfBorrowedResult(t *testing.T) {
	names := NewState("lumen")
	upper := MapOf(names, strings.ToUpper)
	if got := Value[string](upper); got != "LUMEN" {
		t.Errorf("expected LUMEN, got %q", got)
	}
}

func TestZipOrdering(t *testing.T) {
	a := NewState(1)
	b := NewState("x")
	z := Zip[int, string](a, b)

	if got := Value[Pair[int, string]](z); got.First != 1 || got.Second != "x" {
		t.Errorf("expected (1, x), got %v", got)
	}

	a.SetValue(2)
	z.Notify()
	if got := Value[Pair[int, string]](z); got.First != 2 || got.Second != "x" {
		t.Errorf("expected (2, x), got %v", got)
	}
	if got := Value[Pair[int, string]](z).String(); got != "(2, x)" {
		t.Errorf("unexpected String(): %q", got)
	}
}

func TestZipReadsSourcesInOrder(t *testing.T) {
	var reads []string
	a := NewEval(func() int { reads = append(reads, "a"); return 1 })
	b := NewEval(func() int { reads = append(reads, "b"); return 2 })
	z := Zip[int, int](a, b)

	_ = Value[Pair[int, int]](z)
	z.Notify()
	_ = Value[Pair[int, int]](z)

	want := []string{"a", "b", "a", "b"}
	if strings.Join(reads, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, reads)
	}
}

func TestZipNotifyForwardsToBoth(t *testing.T) {
	a := NewState(0)
	b := NewState(0)
	var order []string
	a.Listen(func(*ref.Ref[int]) { order = append(order, "a") })
	b.Listen(func(*ref.Ref[int]) { order = append(order, "b") })

	z := Zip[int, int](a, b)
	z.Notify()
	if strings.Join(order, ",") != "a,b" {
		t.Errorf("expected a,b got %v", order)
	}
	if got := Value[int](z.SignalB()); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestEvalDirtyBit(t *testing.T) {
	calls := 0
	e := NewEval(func() int {
		calls++
		return calls * 100
	})

	if !e.Dirty() {
		t.Error("new eval should be dirty")
	}
	if got := Value[int](e); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
	if got := Value[int](e); got != 100 || calls != 1 {
		t.Errorf("expected cached 100 after 1 call, got %d after %d", got, calls)
	}

	e.Notify()
	if got := Value[int](e); got != 200 {
		t.Errorf("expected 200 after notify, got %d", got)
	}

	e.SetValue(5)
	e.Listen(func(*ref.Ref[int]) { t.Error("eval listener must never fire") })
	if got := Value[int](e); got != 200 {
		t.Errorf("SetValue must be a no-op, got %d", got)
	}
}

func TestEvalPanicKeepsDirty(t *testing.T) {
	fail := true
	e := NewEval(func() string {
		if fail {
			panic("nope")
		}
		return "ok"
	})
	func() {
		defer func() { recover() }()
		e.Get()
	}()
	if !e.Dirty() {
		t.Error("failed eval must stay dirty")
	}
	fail = false
	if got := Value[string](e); got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestEvalReaderWaitsForInFlightEvaluation(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	e := NewEval(func() int {
		n := calls.Add(1)
		if n == 2 {
			close(entered)
			<-release
		}
		return int(n) * 100
	})
	if got := Value[int](e); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}

	e.Invalidate()
	first := make(chan int, 1)
	go func() { first <- Value[int](e) }()
	<-entered

	second := make(chan int, 1)
	go func() { second <- Value[int](e) }()

	select {
	case got := <-second:
		t.Fatalf("reader returned %d while evaluation was in flight", got)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	for _, ch := range []chan int{first, second} {
		select {
		case got := <-ch:
			if got != 200 {
				t.Errorf("expected 200, got %d", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("reader never returned")
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 evaluations, got %d", n)
	}
}

func TestClonesShareCache(t *testing.T) {
	calls := 0
	d := Derive(NewState(3), func(n int) int { calls++; return n })
	c := d.Clone()

	_ = Value[int](d)
	_ = Value[int](c)
	if calls != 1 {
		t.Errorf("clone should share the cache, got %d computations", calls)
	}
}
