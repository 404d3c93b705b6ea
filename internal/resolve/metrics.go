package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts resolver activity. All record methods are nil-safe so the
// resolver can run without a registry (tests, one-shot tools).
type Metrics struct {
	resolutions  *prometheus.CounterVec
	fetchBatches *prometheus.CounterVec
	valueCount   prometheus.Histogram
}

// NewMetrics registers the resolver metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relation_resolutions_total",
			Help: "Relation resolutions by source table, relation kind and outcome.",
		}, []string{"table", "kind", "outcome"}),
		fetchBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relation_fetch_batches_total",
			Help: "Batched record fetches issued per foreign table.",
		}, []string{"table"}),
		valueCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relation_resolved_values",
			Help:    "Number of values produced per resolution.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) recordResolution(table, kind, outcome string, values int) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(table, kind, outcome).Inc()
	if outcome == outcomeResolved {
		m.valueCount.Observe(float64(values))
	}
}

func (m *Metrics) recordFetchBatch(table string) {
	if m == nil {
		return
	}
	m.fetchBatches.WithLabelValues(table).Inc()
}

const (
	outcomeResolved   = "resolved"
	outcomeEmpty      = "empty"
	outcomeNoMetadata = "no_metadata"
	outcomeError      = "error"
)
