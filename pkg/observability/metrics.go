package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the AgriMind collectors.
//
// Usage:
//
//	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
//	inv := invoker.New(reg, gen, invoker.WithHooks(metrics.Hooks()))
type Metrics struct {
	// InvocationCounter counts finished invocations.
	// Labels: action, outcome (ok or a failure kind)
	InvocationCounter *prometheus.CounterVec

	// InvocationDuration measures invocation latency in seconds.
	// Labels: action
	InvocationDuration *prometheus.HistogramVec

	// InFlight is the number of invocations currently running.
	InFlight prometheus.Gauge

	// HTTPRequestDuration measures HTTP API request latency.
	// Labels: method, route, status_code
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Use a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvocationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agrimind_invocations_total",
				Help: "Total number of action invocations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		InvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agrimind_invocation_duration_seconds",
				Help:    "Duration of action invocations in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"action"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agrimind_invocations_in_flight",
				Help: "Number of action invocations currently running",
			},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agrimind_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"method", "route", "status_code"},
		),
	}
}

// Hooks returns invocation hooks that record into m.
func (m *Metrics) Hooks() domain.InvocationHooks {
	return domain.InvocationHooks{
		OnInvoke: func(context.Context, *domain.InvocationEvent) {
			m.InFlight.Inc()
		},
		OnResult: func(_ context.Context, e *domain.InvocationEvent) {
			m.InFlight.Dec()
			m.InvocationCounter.WithLabelValues(e.Action, e.Outcome).Inc()
			m.InvocationDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())
		},
	}
}

// LoggingHooks returns invocation hooks that log each outcome.
// Failures log at Warn, successes at Info.
func LoggingHooks(logger *slog.Logger) domain.InvocationHooks {
	return domain.InvocationHooks{
		OnResult: func(ctx context.Context, e *domain.InvocationEvent) {
			level := slog.LevelInfo
			if e.Outcome != domain.OutcomeOK {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "invocation finished",
				"action", e.Action,
				"invocation_id", e.ID,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
	}
}
