package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Poller metrics
	PollCycles        prometheus.Counter
	PollCycleDuration prometheus.Histogram
	PollOutcomes      *prometheus.CounterVec
	PollCyclesSkipped prometheus.Counter
	TrackedPlayers    prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Poller metrics
		PollCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legendtrack_poll_cycles_total",
			Help: "Total number of completed poll cycles",
		}),
		PollCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "legendtrack_poll_cycle_duration_seconds",
			Help:    "Duration of poll cycles",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		PollOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legendtrack_poll_outcomes_total",
				Help: "Per-player poll outcomes by status",
			},
			[]string{"status"},
		),
		PollCyclesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legendtrack_poll_cycles_skipped_total",
			Help: "Poll ticks skipped because a cycle was still running",
		}),
		TrackedPlayers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "legendtrack_tracked_players",
			Help: "Number of players covered by the latest poll cycle",
		}),
	}
}
