// Package observability packages Prometheus instrumentation for the
// pipeline as lifecycle hooks, so the orchestrator stays free of any
// metrics dependency.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	mu     sync.Mutex
	starts map[string]time.Time // session+step -> start time
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalyst_step_executions_total",
				Help: "Total number of step executions by outcome",
			},
			[]string{"step", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalyst_step_duration_seconds",
				Help: "Duration of step executions",
			},
			[]string{"step"},
		),
		starts: make(map[string]time.Time),
	}
	reg.MustRegister(m.executions, m.duration)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			m.mu.Lock()
			m.starts[key(e)] = e.Timestamp
			m.mu.Unlock()
		},
		OnStepFinish: func(ctx context.Context, e *domain.StepEvent) {
			m.executions.WithLabelValues(string(e.Step), "success").Inc()
			m.observe(e)
		},
		OnStepError: func(ctx context.Context, e *domain.StepEvent) {
			outcome := "failure"
			if e.Dependency {
				outcome = "dependency_missing"
			}
			m.executions.WithLabelValues(string(e.Step), outcome).Inc()
			m.observe(e)
		},
	}
}

// Executions exposes the execution counter, mainly for tests.
func (m *Metrics) Executions() *prometheus.CounterVec {
	return m.executions
}

func (m *Metrics) observe(e *domain.StepEvent) {
	m.mu.Lock()
	start, ok := m.starts[key(e)]
	if ok {
		delete(m.starts, key(e))
	}
	m.mu.Unlock()

	if ok {
		m.duration.WithLabelValues(string(e.Step)).Observe(e.Timestamp.Sub(start).Seconds())
	}
}

func key(e *domain.StepEvent) string {
	return e.SessionID + "/" + string(e.Step)
}
