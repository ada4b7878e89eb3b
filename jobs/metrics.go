package jobs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background task runs.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the task metrics against the provided registerer.
// When the registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forgeline",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background task runs by type and outcome.",
		}, []string{"task", "success"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forgeline",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Background task run duration by type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
	}
	registerer.MustRegister(m.runs, m.duration)
	return m
}

// Start records the beginning of a task run and returns the completion
// callback. A nil receiver is a no-op so tests can skip instrumentation.
func (m *Metrics) Start(task string) func(success bool) {
	if m == nil {
		return func(bool) {}
	}
	start := time.Now()
	return func(success bool) {
		m.runs.WithLabelValues(task, strconv.FormatBool(success)).Inc()
		m.duration.WithLabelValues(task).Observe(time.Since(start).Seconds())
	}
}
