// Package metric provides Prometheus metrics for ptagate.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
)

// Collector reports the state of the installed validator at scrape time.
type Collector struct {
	store *pta.Store

	loaded    *prometheus.Desc
	keyPairs  *prometheus.Desc
	buildInfo *prometheus.Desc
}

// NewCollector creates a collector reading from store.
func NewCollector(store *pta.Store) *Collector {
	return &Collector{
		store: store,
		loaded: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "validator_loaded"),
			"1 if a validator is installed and requests can be checked.",
			nil, nil,
		),
		keyPairs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "key_pairs"),
			"Configured key pairs by slot.",
			[]string{"slot"}, nil,
		),
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information.",
			[]string{"version", "commit"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.loaded
	ch <- c.keyPairs
	ch <- c.buildInfo
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	info := buildinfo.Get()
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, info.Version, info.Commit)

	v := c.store.Load()
	if v == nil {
		ch <- prometheus.MustNewConstMetric(c.loaded, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.loaded, prometheus.GaugeValue, 1)
	for _, slot := range v.Keyring().Slots() {
		ch <- prometheus.MustNewConstMetric(c.keyPairs, prometheus.GaugeValue, 1, slot.String())
	}
}
