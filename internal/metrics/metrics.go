package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bridge provides observability for sponsor, wrap and burn.
type Bridge struct {
	// Operations by name and outcome ("ok", "error" or "fault")
	Operations *prometheus.CounterVec

	// Operation latency including time spent waiting for the wallet lock
	Duration *prometheus.HistogramVec

	// Token units moved across the bridge by direction ("wrap", "burn")
	Volume *prometheus.CounterVec
}

// New registers the bridge metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Bridge {
	f := promauto.With(reg)
	return &Bridge{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "capezk_bridge_operations_total",
			Help: "Total bridge operations by operation and outcome",
		}, []string{"op", "outcome"}),

		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capezk_bridge_operation_duration_seconds",
			Help:    "Duration of bridge operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"op"}),

		Volume: f.NewCounterVec(prometheus.CounterOpts{
			Name: "capezk_bridge_volume_total",
			Help: "Token units moved across the bridge by direction",
		}, []string{"direction"}),
	}
}

// ObserveOp records one finished operation.
func (m *Bridge) ObserveOp(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveFault records an operation aborted by an internal fault.
func (m *Bridge) ObserveFault(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, "fault").Inc()
	m.Duration.WithLabelValues(op).Observe(d.Seconds())
}

// AddVolume records amount units moved in direction.
func (m *Bridge) AddVolume(direction string, amount uint64) {
	if m != nil {
		m.Volume.WithLabelValues(direction).Add(float64(amount))
	}
}
