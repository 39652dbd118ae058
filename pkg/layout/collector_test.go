package layout

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	tr := NewTracker()
	tr.BatchMarkDirty([]NodeID{1, 2}, DirtyGeometry)
	tr.RecordRecomputation()

	c := NewCollector(tr, "lumen")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP lumen_layout_dirty_nodes Number of layout nodes currently dirty
# TYPE lumen_layout_dirty_nodes gauge
lumen_layout_dirty_nodes 2
# HELP lumen_layout_efficiency_ratio Recomputed over invalidated nodes
# TYPE lumen_layout_efficiency_ratio gauge
lumen_layout_efficiency_ratio 0.5
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lumen_layout_dirty_nodes", "lumen_layout_efficiency_ratio")
	assert.NoError(t, err)
	assert.Equal(t, 5, testutil.CollectAndCount(c))
}
