package layout

import "slices"

// Phase is the stage of the frame a layout query happens in.
type Phase uint8

const (
	PhaseLayout Phase = iota
	PhaseDraw
	PhaseUpdate
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLayout:
		return "layout"
	case PhaseDraw:
		return "draw"
	case PhaseUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Context is the query passed to the layout engine for one node.
type Context struct {
	AvailableWidth  float32
	AvailableHeight float32
	Phase           Phase
}

// Engine computes layout for a node. Implementations live outside this
// package; the frame driver calls Compute for each dirty node, ancestors
// first.
type Engine interface {
	Compute(node NodeID, ctx Context) error
	Parents() map[NodeID]NodeID
}

// Depth returns the number of ancestors of node in parents.
func Depth(node NodeID, parents map[NodeID]NodeID) int {
	depth := 0
	seen := map[NodeID]struct{}{node: {}}
	for {
		parent, ok := parents[node]
		if !ok {
			return depth
		}
		if _, dup := seen[parent]; dup {
			return depth
		}
		seen[parent] = struct{}{}
		depth++
		node = parent
	}
}

// SortParentsFirst orders nodes so every ancestor precedes its descendants.
// Nodes at equal depth keep ascending ID order.
func SortParentsFirst(nodes []NodeID, parents map[NodeID]NodeID) {
	depths := make(map[NodeID]int, len(nodes))
	for _, n := range nodes {
		depths[n] = Depth(n, parents)
	}
	slices.SortStableFunc(nodes, func(a, b NodeID) int {
		if depths[a] != depths[b] {
			return depths[a] - depths[b]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}
