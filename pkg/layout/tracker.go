package layout

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Tracker records dirty layout nodes. It is safe for concurrent use; the
// frame driver writes to it and the debug server reads from it.
type Tracker struct {
	mu      sync.RWMutex
	dirty   map[NodeID]DirtyFlags
	widgets map[string]NodeID
	metrics Metrics
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		dirty:   make(map[NodeID]DirtyFlags),
		widgets: make(map[string]NodeID),
	}
}

// MarkDirty marks node dirty with DirtyAll.
func (t *Tracker) MarkDirty(node NodeID) {
	t.MarkDirtyWithFlags(node, DirtyAll)
}

// MarkDirtyWithFlags marks node dirty and ORs flags into its existing flags.
// Marking twice with the same flags is the same as marking once.
func (t *Tracker) MarkDirtyWithFlags(node NodeID, flags DirtyFlags) {
	t.mu.Lock()
	t.markLocked(node, flags)
	t.mu.Unlock()
}

// BatchMarkDirty marks every node in nodes with flags.
func (t *Tracker) BatchMarkDirty(nodes []NodeID, flags DirtyFlags) {
	t.mu.Lock()
	for _, node := range nodes {
		t.markLocked(node, flags)
	}
	t.mu.Unlock()
}

func (t *Tracker) markLocked(node NodeID, flags DirtyFlags) {
	existing, ok := t.dirty[node]
	if !ok {
		t.metrics.NodesInvalidated++
	}
	t.dirty[node] = existing | flags
}

// MarkClean removes node's dirty state and flags. Other nodes are untouched.
func (t *Tracker) MarkClean(node NodeID) {
	t.mu.Lock()
	delete(t.dirty, node)
	t.mu.Unlock()
}

// ClearAll marks every node clean.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	clear(t.dirty)
	t.mu.Unlock()
}

// DirtyFlagsOf returns node's flags, or DirtyNone if it is clean.
func (t *Tracker) DirtyFlagsOf(node NodeID) DirtyFlags {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty[node]
}

// HasDirtyFlags reports whether node has any of flags set.
func (t *Tracker) HasDirtyFlags(node NodeID, flags DirtyFlags) bool {
	return t.DirtyFlagsOf(node).Intersects(flags)
}

// IsDirty reports whether node is dirty.
func (t *Tracker) IsDirty(node NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.dirty[node]
	return ok
}

// DirtyCount returns the number of dirty nodes.
func (t *Tracker) DirtyCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.dirty)
}

// DirtyNodes returns the dirty nodes in ascending order.
func (t *Tracker) DirtyNodes() []NodeID {
	t.mu.RLock()
	nodes := make([]NodeID, 0, len(t.dirty))
	for node := range t.dirty {
		nodes = append(nodes, node)
	}
	t.mu.RUnlock()
	slices.Sort(nodes)
	return nodes
}

// DirtyNode is a dirty node and its flags.
type DirtyNode struct {
	Node  NodeID
	Flags DirtyFlags
}

// Snapshot is a consistent view of the tracker.
type Snapshot struct {
	// Dirty is ordered by node.
	Dirty   []DirtyNode
	Metrics Metrics
}

// Snapshot returns the dirty nodes with their flags and the metrics, read
// under one lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	snap := Snapshot{
		Dirty:   make([]DirtyNode, 0, len(t.dirty)),
		Metrics: t.metrics,
	}
	for node, flags := range t.dirty {
		snap.Dirty = append(snap.Dirty, DirtyNode{Node: node, Flags: flags})
	}
	t.mu.RUnlock()

	slices.SortFunc(snap.Dirty, func(a, b DirtyNode) int {
		return cmp.Compare(a.Node, b.Node)
	})
	return snap
}

// RegisterWidget maps a widget path to a node. A later registration for the
// same path replaces the earlier one.
func (t *Tracker) RegisterWidget(path string, node NodeID) {
	t.mu.Lock()
	t.widgets[path] = node
	t.mu.Unlock()
}

// NodeID returns the node registered for path.
func (t *Tracker) NodeID(path string) (NodeID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.widgets[path]
	return node, ok
}

// MarkWidgetDirty marks the node registered for path with DirtyAll. It
// reports false if path is unknown.
func (t *Tracker) MarkWidgetDirty(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	node, ok := t.widgets[path]
	if !ok {
		return false
	}
	t.markLocked(node, DirtyAll)
	return true
}

// PropagateDirtyUp ORs node's current flags plus DirtyGeometry into node and
// each of its ancestors, following parents until a node has no parent. A
// cycle in parents stops the walk at the first repeated node.
func (t *Tracker) PropagateDirtyUp(node NodeID, parents map[NodeID]NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	flags := t.dirty[node] | DirtyGeometry
	seen := make(map[NodeID]struct{})
	current, ok := node, true
	for ok {
		if _, dup := seen[current]; dup {
			return
		}
		seen[current] = struct{}{}
		t.markLocked(current, flags)
		current, ok = parents[current]
	}
}

// Metrics returns a copy of the current metrics.
func (t *Tracker) Metrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

// ResetMetrics starts a new measurement period.
func (t *Tracker) ResetMetrics() {
	t.mu.Lock()
	t.metrics = Metrics{}
	t.mu.Unlock()
}

// RecordInvalidation counts an invalidation that happened outside the
// tracker's own marking.
func (t *Tracker) RecordInvalidation() {
	t.mu.Lock()
	t.metrics.NodesInvalidated++
	t.mu.Unlock()
}

// RecordRecomputation counts one recomputed node.
func (t *Tracker) RecordRecomputation() {
	t.mu.Lock()
	t.metrics.NodesRecomputed++
	t.mu.Unlock()
}

// RecordLayoutTime stores the duration of the last layout pass.
func (t *Tracker) RecordLayoutTime(d time.Duration) {
	t.mu.Lock()
	t.metrics.LayoutTime = d
	t.mu.Unlock()
}
