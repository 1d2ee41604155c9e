// Package metrics defines the custom Prometheus collectors of the habit API.
// It is the single source of truth for metric names, labels and help strings.
//
// Collectors are registered on the registerer passed to New, so tests can use
// a fresh prometheus.NewRegistry() per server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "habit"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeReplay  = "replay"
)

type Metrics struct {
	// Operations counts habit use case calls.
	// Labels:
	//   - operation: create, list, get, update, patch or delete
	//   - outcome: success, replay, or the error kind (not_found, forbidden, validation, unauthorized, internal)
	Operations *prometheus.CounterVec

	// Duration measures how long a habit use case takes, error or not.
	// Label:
	//   - operation: as above
	Duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of habit operations, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of habit operations including persistence.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe records one finished operation. A nil *Metrics is a no-op.
func (m *Metrics) Observe(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
