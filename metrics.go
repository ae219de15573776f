package jsbridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for sessions. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Evals          *prometheus.CounterVec
	EvalDuration   *prometheus.HistogramVec
	Callbacks      *prometheus.CounterVec
	SessionsActive prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbridge_evals_total",
				Help: "Total number of session operations that ran script",
			},
			[]string{"op", "status"},
		),
		EvalDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jsbridge_eval_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Callbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbridge_callbacks_total",
				Help: "Total number of host callable dispatches from engine code",
			},
			[]string{"status"},
		),
		SessionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "jsbridge_sessions_active",
				Help: "Number of open sessions",
			},
		),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Evals.WithLabelValues(op, status(err)).Inc()
	m.EvalDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) callback(err error) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.SessionsActive.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.SessionsActive.Dec()
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
