package layout

import "time"

// Metrics counts invalidation work over a measurement period.
type Metrics struct {
	// NodesInvalidated is the number of clean-to-dirty transitions.
	NodesInvalidated int `json:"nodes_invalidated"`

	// NodesRecomputed is the number of nodes the layout pass recomputed.
	NodesRecomputed int `json:"nodes_recomputed"`

	// LayoutTime is the duration of the last layout pass.
	LayoutTime time.Duration `json:"layout_time_ns"`
}

// EfficiencyRatio returns recomputed / invalidated. It is 1.0 when nothing
// was invalidated.
func (m Metrics) EfficiencyRatio() float64 {
	if m.NodesInvalidated == 0 {
		return 1.0
	}
	return float64(m.NodesRecomputed) / float64(m.NodesInvalidated)
}
