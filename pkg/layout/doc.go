// Package layout tracks which layout-tree nodes need recomputation.
//
// A Tracker records a set of dirty nodes with per-node DirtyFlags describing
// what changed. Dirtiness propagates upward: a child whose size may change
// can always affect its ancestors, so PropagateDirtyUp ORs GEOMETRY into every
// ancestor.
//
//	tracker := layout.NewTracker()
//	tracker.MarkDirtyWithFlags(leaf, layout.DirtyContent)
//	tracker.PropagateDirtyUp(leaf, engine.Parents())
//	for _, node := range tracker.DirtyNodes() {
//	    // recompute node
//	    tracker.MarkClean(node)
//	    tracker.RecordRecomputation()
//	}
//
// The layout algorithm itself is not implemented here. It is consumed through
// the Engine interface.
package layout
