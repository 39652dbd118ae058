package layout

import (
	"strconv"
	"strings"
)

// NodeID identifies a node in the layout tree.
type NodeID uint64

// String returns the node ID in decimal.
func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// DirtyFlags describes what changed in a node.
type DirtyFlags uint8

const (
	// DirtyGeometry means size, position or bounds changed.
	DirtyGeometry DirtyFlags = 1 << iota
	// DirtyStyle means layout properties changed.
	DirtyStyle
	// DirtyChildren means children were added, removed or reordered.
	DirtyChildren
	// DirtyContent means text, images or other content changed.
	DirtyContent

	DirtyNone DirtyFlags = 0
	DirtyAll             = DirtyGeometry | DirtyStyle | DirtyChildren | DirtyContent
)

var dirtyNames = []struct {
	flag DirtyFlags
	name string
}{
	{DirtyGeometry, "GEOMETRY"},
	{DirtyStyle, "STYLE"},
	{DirtyChildren, "CHILDREN"},
	{DirtyContent, "CONTENT"},
}

// Intersects reports whether f and other share a bit.
func (f DirtyFlags) Intersects(other DirtyFlags) bool {
	return f&other != 0
}

// Contains reports whether every bit of other is set in f.
func (f DirtyFlags) Contains(other DirtyFlags) bool {
	return f&other == other
}

// Names returns the names of the set flags in bit order.
func (f DirtyFlags) Names() []string {
	var names []string
	for _, d := range dirtyNames {
		if f&d.flag != 0 {
			names = append(names, d.name)
		}
	}
	return names
}

// String returns "ALL", "NONE" or the set flags joined with "|".
func (f DirtyFlags) String() string {
	switch f {
	case DirtyNone:
		return "NONE"
	case DirtyAll:
		return "ALL"
	}
	return strings.Join(f.Names(), "|")
}
