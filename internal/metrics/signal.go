// Package metrics exposes Prometheus instrumentation for signal receivers.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"savesignal/internal/signal"
)

// SignalMetrics counts receiver calls and observes how long each one blocked
// the sender.
type SignalMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSignalMetrics registers the collectors on reg.
func NewSignalMetrics(reg prometheus.Registerer) (*SignalMetrics, error) {
	m := &SignalMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_receiver_calls_total",
				Help: "Total number of signal receiver calls by outcome.",
			},
			[]string{"signal", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signal_receiver_duration_seconds",
				Help:    "Time a receiver blocked the sending goroutine.",
				Buckets: []float64{.001, .01, .1, .5, 1, 2, 5, 10},
			},
			[]string{"signal"},
		),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument wraps r so every call is counted and timed.
func (m *SignalMetrics) Instrument(r signal.Receiver) signal.Receiver {
	return func(ctx context.Context, ev signal.Event) error {
		start := time.Now()
		err := r(ctx, ev)
		m.duration.WithLabelValues(ev.Signal).Observe(time.Since(start).Seconds())

		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.calls.WithLabelValues(ev.Signal, outcome).Inc()
		return err
	}
}
