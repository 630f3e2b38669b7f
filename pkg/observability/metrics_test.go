package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := metrics.Hooks()

	ctx := context.Background()
	start := time.Now()

	hooks.OnStepStart(ctx, &domain.StepEvent{
		Timestamp: start,
		SessionID: "s1",
		Step:      domain.StepDataAssembly,
	})
	hooks.OnStepFinish(ctx, &domain.StepEvent{
		Timestamp: start.Add(50 * time.Millisecond),
		SessionID: "s1",
		Step:      domain.StepDataAssembly,
	})

	hooks.OnStepError(ctx, &domain.StepEvent{
		Timestamp:  time.Now(),
		SessionID:  "s1",
		Step:       domain.StepRapidTriage,
		Dependency: true,
	})

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)

	success := testutil.ToFloat64(
		metricWithLabels(t, metrics, "success", domain.StepDataAssembly))
	assert.Equal(t, 1.0, success)

	missing := testutil.ToFloat64(
		metricWithLabels(t, metrics, "dependency_missing", domain.StepRapidTriage))
	assert.Equal(t, 1.0, missing)
}

func metricWithLabels(t *testing.T, m *observability.Metrics, outcome string, step domain.StepID) prometheus.Counter {
	t.Helper()
	c, err := m.Executions().GetMetricWithLabelValues(string(step), outcome)
	assert.NoError(t, err)
	return c
}
