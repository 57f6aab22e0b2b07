package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bare metric names, without the namespace prefix.
// Snapshot returns its keys in this form so consumers (the health rules)
// do not need to know which namespace the server was started with.
const (
	KeysLive          = "keys_live"
	SetsTotal         = "sets_total"
	GetsTotal         = "gets_total"
	MissesTotal       = "misses_total"
	ExpiredTotal      = "expired_total"
	SweepRunsTotal    = "sweep_runs_total"
	SweepRemovedTotal = "sweep_removed_total"
)

// Metrics bundles the Prometheus collectors for the store, the sweeper and
// the HTTP layer. One instance is created at startup and handed to every
// component that records something; there is no ambient global registry.
type Metrics struct {
	registry  *prometheus.Registry
	namespace string

	// Store
	Sets    prometheus.Counter
	Gets    prometheus.Counter
	Misses  prometheus.Counter
	Expired prometheus.Counter
	Keys    prometheus.Gauge

	// Sweeper
	SweepRuns    prometheus.Counter
	SweepRemoved prometheus.Counter

	// HTTP
	RequestDuration *prometheus.HistogramVec
}

// Default histogram buckets for request duration (in milliseconds).
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}

// New creates a registry with all collectors registered.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry:  registry,
		namespace: namespace,

		Sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      SetsTotal,
			Help:      "Total number of Set operations",
		}),
		Gets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      GetsTotal,
			Help:      "Total number of Get operations",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MissesTotal,
			Help:      "Get operations that found no live entry",
		}),
		Expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      ExpiredTotal,
			Help:      "Entries physically removed because their TTL had passed",
		}),
		Keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      KeysLive,
			Help:      "Entries currently held in the table, live or awaiting sweep",
		}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      SweepRunsTotal,
			Help:      "Completed sweep cycles",
		}),
		SweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      SweepRemovedTotal,
			Help:      "Entries removed by sweep cycles",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_ms",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   defaultBuckets,
		}, []string{"method", "status"}),
	}

	registry.MustRegister(
		m.Sets, m.Gets, m.Misses, m.Expired, m.Keys,
		m.SweepRuns, m.SweepRemoved, m.RequestDuration,
	)
	return m
}

// Handler returns the Prometheus exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
