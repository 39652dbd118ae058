// Package update holds the Flags bitset that tells the frame driver what work
// a frame needs, and the Manager that accumulates those flags between frames.
package update

import "strings"

// Flags is a set of pending frame work.
type Flags uint32

const (
	// Eval re-evaluates the widget tree against the reactive graph.
	Eval Flags = 1 << iota
	// Layout recomputes layout for invalidated nodes.
	Layout
	// Draw redraws the frame.
	Draw
	// Focus reassigns keyboard focus.
	Focus
	// Exit stops the frame driver.
	Exit
	// Force runs every phase regardless of other flags.
	Force
	// Resize reports a surface size change; implies a layout pass.
	Resize

	// None is the empty set.
	None Flags = 0
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Eval, "EVAL"},
	{Layout, "LAYOUT"},
	{Draw, "DRAW"},
	{Focus, "FOCUS"},
	{Exit, "EXIT"},
	{Force, "FORCE"},
	{Resize, "RESIZE"},
}

// All lists every named flag in bit order.
func All() []Flags {
	out := make([]Flags, len(flagNames))
	for i, fn := range flagNames {
		out[i] = fn.flag
	}
	return out
}

// Has reports whether f shares any bit with other.
func (f Flags) Has(other Flags) bool {
	return f&other != 0
}

// Contains reports whether every bit of other is set in f.
func (f Flags) Contains(other Flags) bool {
	return f&other == other
}

// IsEmpty reports whether no flag is set.
func (f Flags) IsEmpty() bool {
	return f == None
}

// Without returns f with the bits of other cleared.
func (f Flags) Without(other Flags) Flags {
	return f &^ other
}

// String renders the set as "EVAL|DRAW", or "NONE".
func (f Flags) String() string {
	if f == None {
		return "NONE"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if rest := f &^ (Eval | Layout | Draw | Focus | Exit | Force | Resize); rest != 0 {
		parts = append(parts, "UNKNOWN")
	}
	return strings.Join(parts, "|")
}

// Names returns the names of the set flags in bit order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}
