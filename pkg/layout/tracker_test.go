package layout

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDirtyWithFlagsMerges(t *testing.T) {
	tr := NewTracker()

	tr.MarkDirtyWithFlags(1, DirtyStyle)
	tr.MarkDirtyWithFlags(1, DirtyContent)
	tr.MarkDirtyWithFlags(1, DirtyContent)

	assert.True(t, tr.IsDirty(1))
	assert.Equal(t, DirtyStyle|DirtyContent, tr.DirtyFlagsOf(1))
	assert.True(t, tr.HasDirtyFlags(1, DirtyContent|DirtyGeometry))
	assert.False(t, tr.HasDirtyFlags(1, DirtyGeometry))
	assert.Equal(t, 1, tr.Metrics().NodesInvalidated, "repeated marks count one transition")
}

func TestMarkDirtyDefaultsToAll(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirty(7)
	assert.Equal(t, DirtyAll, tr.DirtyFlagsOf(7))
}

func TestMarkCleanIsolated(t *testing.T) {
	tr := NewTracker()
	tr.BatchMarkDirty([]NodeID{1, 2, 3}, DirtyGeometry)

	tr.MarkClean(2)

	assert.True(t, tr.IsDirty(1))
	assert.False(t, tr.IsDirty(2))
	assert.Equal(t, DirtyNone, tr.DirtyFlagsOf(2))
	assert.True(t, tr.IsDirty(3))
	assert.Equal(t, []NodeID{1, 3}, tr.DirtyNodes())
}

func TestClearAll(t *testing.T) {
	tr := NewTracker()
	tr.BatchMarkDirty([]NodeID{5, 4}, DirtyAll)
	tr.ClearAll()

	assert.Empty(t, tr.DirtyNodes())
	assert.Equal(t, 0, tr.DirtyCount())
	assert.Equal(t, 2, tr.Metrics().NodesInvalidated)
}

func TestPropagateDirtyUp(t *testing.T) {
	// A -> B -> C, C is the leaf.
	const a, b, c NodeID = 1, 2, 3
	parents := map[NodeID]NodeID{c: b, b: a}

	tr := NewTracker()
	tr.MarkDirtyWithFlags(c, DirtyContent)
	tr.PropagateDirtyUp(c, parents)

	for _, node := range []NodeID{a, b} {
		assert.True(t, tr.IsDirty(node), "node %d", node)
		assert.True(t, tr.HasDirtyFlags(node, DirtyGeometry), "node %d", node)
		assert.True(t, tr.DirtyFlagsOf(node).Contains(DirtyContent|DirtyGeometry), "node %d", node)
	}
	assert.Equal(t, DirtyContent|DirtyGeometry, tr.DirtyFlagsOf(c))
}

func TestPropagateDirtyUpKeepsAncestorFlags(t *testing.T) {
	parents := map[NodeID]NodeID{2: 1}
	tr := NewTracker()
	tr.MarkDirtyWithFlags(1, DirtyChildren)
	tr.MarkDirtyWithFlags(2, DirtyStyle)

	tr.PropagateDirtyUp(2, parents)

	assert.Equal(t, DirtyChildren|DirtyStyle|DirtyGeometry, tr.DirtyFlagsOf(1))
}

func TestPropagateDirtyUpStopsOnCycle(t *testing.T) {
	parents := map[NodeID]NodeID{1: 2, 2: 1}
	tr := NewTracker()
	tr.PropagateDirtyUp(1, parents)
	assert.Equal(t, []NodeID{1, 2}, tr.DirtyNodes())
}

func TestWidgetRegistry(t *testing.T) {
	tr := NewTracker()
	tr.RegisterWidget("root/list/0", 42)

	node, ok := tr.NodeID("root/list/0")
	require.True(t, ok)
	assert.Equal(t, NodeID(42), node)

	_, ok = tr.NodeID("missing")
	assert.False(t, ok)

	assert.True(t, tr.MarkWidgetDirty("root/list/0"))
	assert.False(t, tr.MarkWidgetDirty("missing"))
	assert.Equal(t, DirtyAll, tr.DirtyFlagsOf(42))
}

func TestMetrics(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 1.0, tr.Metrics().EfficiencyRatio())

	tr.BatchMarkDirty([]NodeID{1, 2, 3, 4}, DirtyGeometry)
	tr.RecordRecomputation()
	tr.RecordRecomputation()
	tr.RecordInvalidation()
	tr.RecordLayoutTime(3 * time.Millisecond)

	m := tr.Metrics()
	assert.Equal(t, 5, m.NodesInvalidated)
	assert.Equal(t, 2, m.NodesRecomputed)
	assert.Equal(t, 3*time.Millisecond, m.LayoutTime)
	assert.InDelta(t, 0.4, m.EfficiencyRatio(), 1e-9)

	tr.ResetMetrics()
	assert.Equal(t, Metrics{}, tr.Metrics())
	assert.Equal(t, 4, tr.DirtyCount(), "reset keeps dirty state")
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n NodeID) {
			defer wg.Done()
			tr.MarkDirtyWithFlags(n, DirtyStyle)
		}(NodeID(i))
		go func() {
			defer wg.Done()
			_ = tr.DirtyNodes()
			_ = tr.Metrics()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tr.DirtyCount())
}

func TestDirtyFlagsString(t *testing.T) {
	assert.Equal(t, "NONE", DirtyNone.String())
	assert.Equal(t, "ALL", DirtyAll.String())
	assert.Equal(t, "GEOMETRY|CONTENT", (DirtyGeometry | DirtyContent).String())
	assert.Equal(t, []string{"STYLE", "CHILDREN"}, (DirtyStyle | DirtyChildren).Names())
}

func TestSortParentsFirst(t *testing.T) {
	parents := map[NodeID]NodeID{3: 2, 2: 1, 5: 1}
	nodes := []NodeID{3, 5, 2, 1}
	SortParentsFirst(nodes, parents)
	assert.Equal(t, []NodeID{1, 2, 5, 3}, nodes)
	assert.Equal(t, 2, Depth(3, parents))
	assert.Equal(t, 0, Depth(9, parents))
}

func TestSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirtyWithFlags(9, DirtyContent)
	tr.MarkDirtyWithFlags(2, DirtyStyle)
	tr.RecordRecomputation()

	snap := tr.Snapshot()
	assert.Equal(t, []DirtyNode{
		{Node: 2, Flags: DirtyStyle},
		{Node: 9, Flags: DirtyContent},
	}, snap.Dirty)
	assert.Equal(t, 2, snap.Metrics.NodesInvalidated)
	assert.Equal(t, 1, snap.Metrics.NodesRecomputed)
}

func TestSnapshotIsConsistent(t *testing.T) {
	tr := NewTracker()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 500; i++ {
			tr.MarkDirtyWithFlags(NodeID(i), DirtyGeometry)
		}
	}()

	for {
		snap := tr.Snapshot()
		require.Equal(t, snap.Metrics.NodesInvalidated, len(snap.Dirty),
			"dirty nodes and invalidation count come from the same moment")
		select {
		case <-done:
			return
		default:
		}
	}
}
