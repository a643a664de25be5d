package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard service.
type Metrics struct {
	DatasetRecords      prometheus.Gauge
	DatasetLoadDuration prometheus.Gauge
	DatasetLoadErrors   prometheus.Counter

	Queries             *prometheus.CounterVec   // labels: view, outcome={ok,empty,error,canceled}
	AggregationDuration *prometheus.HistogramVec // labels: engine
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics registered with reg. A nil reg skips
// registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arrivals_dashboard",
			Name:      "dataset_records",
			Help:      "Joined records in the loaded dataset.",
		}),
		DatasetLoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arrivals_dashboard",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time taken by the one-time dataset load.",
		}),
		DatasetLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arrivals_dashboard",
			Name:      "dataset_load_errors_total",
			Help:      "Failed dataset loads.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrivals_dashboard",
			Name:      "queries_total",
			Help:      "Dashboard queries by view and outcome.",
		}, []string{"view", "outcome"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arrivals_dashboard",
			Name:      "aggregation_duration_seconds",
			Help:      "Time to filter and aggregate one selection.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"engine"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.DatasetRecords,
			m.DatasetLoadDuration,
			m.DatasetLoadErrors,
			m.Queries,
			m.AggregationDuration,
		)
	}
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// ObserveLoad records the outcome of the dataset load.
func (m *Metrics) ObserveLoad(records int, seconds float64, err error) {
	if err != nil {
		m.DatasetLoadErrors.Inc()
		return
	}
	m.DatasetRecords.Set(float64(records))
	m.DatasetLoadDuration.Set(seconds)
}

// ObserveQuery counts one query of view.
func (m *Metrics) ObserveQuery(view, outcome string) {
	m.Queries.WithLabelValues(view, outcome).Inc()
}

// ObserveAggregation records the duration of one aggregation run.
func (m *Metrics) ObserveAggregation(engine string, seconds float64) {
	m.AggregationDuration.WithLabelValues(engine).Observe(seconds)
}
