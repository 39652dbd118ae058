package layout

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a Tracker's state as Prometheus metrics. Values are read
// from the tracker at scrape time.
type Collector struct {
	tracker *Tracker

	dirtyNodes  *prometheus.Desc
	invalidated *prometheus.Desc
	recomputed  *prometheus.Desc
	efficiency  *prometheus.Desc
	layoutTime  *prometheus.Desc
}

// NewCollector creates a collector for tracker under namespace.
//
//	reg.MustRegister(layout.NewCollector(tracker, "lumen"))
func NewCollector(tracker *Tracker, namespace string) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "layout", n)
	}
	return &Collector{
		tracker:     tracker,
		dirtyNodes:  prometheus.NewDesc(name("dirty_nodes"), "Number of layout nodes currently dirty", nil, nil),
		invalidated: prometheus.NewDesc(name("nodes_invalidated"), "Nodes invalidated in the current measurement period", nil, nil),
		recomputed:  prometheus.NewDesc(name("nodes_recomputed"), "Nodes recomputed in the current measurement period", nil, nil),
		efficiency:  prometheus.NewDesc(name("efficiency_ratio"), "Recomputed over invalidated nodes", nil, nil),
		layoutTime:  prometheus.NewDesc(name("last_pass_seconds"), "Duration of the last layout pass in seconds", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.dirtyNodes
	ch <- c.invalidated
	ch <- c.recomputed
	ch <- c.efficiency
	ch <- c.layoutTime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.tracker.Snapshot()
	m := snap.Metrics
	ch <- prometheus.MustNewConstMetric(c.dirtyNodes, prometheus.GaugeValue, float64(len(snap.Dirty)))
	ch <- prometheus.MustNewConstMetric(c.invalidated, prometheus.GaugeValue, float64(m.NodesInvalidated))
	ch <- prometheus.MustNewConstMetric(c.recomputed, prometheus.GaugeValue, float64(m.NodesRecomputed))
	ch <- prometheus.MustNewConstMetric(c.efficiency, prometheus.GaugeValue, m.EfficiencyRatio())
	ch <- prometheus.MustNewConstMetric(c.layoutTime, prometheus.GaugeValue, m.LayoutTime.Seconds())
}
