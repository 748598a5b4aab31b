package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application lifecycle.
type Metrics struct {
	// Lifecycle transitions by resulting status
	Transitions *prometheus.CounterVec

	// Submissions blocked before the transition, by gate
	SubmissionsBlocked *prometheus.CounterVec

	// Submit latency including the gate checks
	SubmitLatency prometheus.Histogram
}

// New creates a Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admitly_application_transitions_total",
			Help: "Total successful application transitions by resulting status",
		}, []string{"status"}),

		SubmissionsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admitly_application_submissions_blocked_total",
			Help: "Total submissions rejected before the transition, by gate",
		}, []string{"reason"}), // reason: "incomplete_application", "profile_incomplete", "already_submitted"

		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "admitly_application_submit_duration_seconds",
			Help:    "Duration of submit calls including gate checks",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransition records a successful transition into status.
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

// IncrementBlocked records a submission rejected by a gate.
func (m *Metrics) IncrementBlocked(reason string) {
	if m != nil {
		m.SubmissionsBlocked.WithLabelValues(reason).Inc()
	}
}

// ObserveSubmitLatency records the duration of a submit call.
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}
