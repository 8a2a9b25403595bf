// Package observability provides lifecycle hook utilities and the
// prometheus instrumentation for the router.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/sluice/pkg/domain"
)

// Metrics holds the router's prometheus collectors.
type Metrics struct {
	executions    *prometheus.CounterVec
	steps         *prometheus.CounterVec
	valueRefunded prometheus.Counter
	duration      prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_executions_total",
				Help: "Executions by outcome.",
			},
			[]string{"outcome"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_steps_total",
				Help: "Dispatched steps by adapter and outcome.",
			},
			[]string{"adapter", "outcome"},
		),
		valueRefunded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sluice_value_refunded_total",
				Help: "Native value refunded at settlement.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sluice_execution_duration_seconds",
				Help:    "Wall time of Execute calls.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.executions, m.steps, m.valueRefunded, m.duration)
	return m
}

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecuteEnd: func(_ context.Context, event *domain.ExecutionEvent) {
			m.executions.WithLabelValues(outcome(event.Err)).Inc()
			m.valueRefunded.Add(float64(event.Refunded))
			m.duration.Observe(event.Duration.Seconds())
		},
		OnStepEnd: func(_ context.Context, event *domain.StepEvent) {
			m.steps.WithLabelValues(event.Adapter, outcome(event.Err)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
