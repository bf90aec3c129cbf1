package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	ok := &domain.InvocationEvent{Action: "predict-yield"}
	hooks.OnInvoke(ctx, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))

	ok.Outcome = domain.OutcomeOK
	ok.Duration = 120 * time.Millisecond
	hooks.OnResult(ctx, ok)

	bad := &domain.InvocationEvent{Action: "predict-yield"}
	hooks.OnInvoke(ctx, bad)
	bad.Outcome = domain.KindValidation
	hooks.OnResult(ctx, bad)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))

	expected := `
		# HELP agrimind_invocations_total Total number of action invocations by action and outcome
		# TYPE agrimind_invocations_total counter
		agrimind_invocations_total{action="predict-yield",outcome="ok"} 1
		agrimind_invocations_total{action="predict-yield",outcome="validation"} 1
	`
	if err := testutil.CollectAndCompare(m.InvocationCounter, strings.NewReader(expected)); err != nil {
		t.Errorf("Unexpected metric value: %v", err)
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.InvocationDuration))
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	// Registering twice on separate registries must not panic.
	require.NotPanics(t, func() {
		observability.NewMetrics(prometheus.NewRegistry())
		observability.NewMetrics(prometheus.NewRegistry())
	})
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LoggingHooks(logger)

	hooks.OnResult(context.Background(), &domain.InvocationEvent{
		Action: "weather-forecast", ID: "abc", Outcome: domain.KindTransport,
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "action=weather-forecast")
	assert.Contains(t, out, "outcome=transport")
}
