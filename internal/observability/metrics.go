package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"

	"github.com/CobrasOrg/auth-service/internal/config"
)

// authMetrics holds the instruments for the credential flows. A nil
// package value means metrics are off and every Record call is a no-op.
type authMetrics struct {
	logins           metric.Int64Counter
	registrations    metric.Int64Counter
	logouts          metric.Int64Counter
	passwordFlows    metric.Int64Counter
	tokenValidations metric.Int64Counter
	tokenRevocations metric.Int64Counter
	requestDuration  metric.Float64Histogram
	healthChecks     metric.Int64Counter
	healthDuration   metric.Float64Histogram
}

var metrics atomic.Pointer[authMetrics]

// instrumentSet builds instruments and keeps the first error, so the
// registration block below reads as a flat list.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func (s *instrumentSet) counter(name string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name)
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create counter %s: %w", name, err)
	}
	return c
}

func (s *instrumentSet) histogram(name, desc string) metric.Float64Histogram {
	h, err := s.meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription(desc))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create histogram %s: %w", name, err)
	}
	return h
}

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	set := &instrumentSet{meter: mp.Meter("auth-service")}
	m := &authMetrics{
		logins:           set.counter("auth.login.attempts"),
		registrations:    set.counter("auth.register.attempts"),
		logouts:          set.counter("auth.logout.attempts"),
		passwordFlows:    set.counter("auth.password.flow.events"),
		tokenValidations: set.counter("auth.token.validation.events"),
		tokenRevocations: set.counter("auth.token.revocation.events"),
		requestDuration:  set.histogram("auth.request.duration", "Duration of auth endpoint requests in seconds"),
		healthChecks:     set.counter("health.check.results"),
		healthDuration:   set.histogram("health.check.duration", "Duration of health dependency checks in seconds"),
	}
	if set.err != nil {
		return nil, set.err
	}
	metrics.Store(m)

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint, "interval", cfg.OTELMetricsExportInterval)
	return mp, nil
}

func RecordAuthLogin(ctx context.Context, outcome string) {
	if m := metrics.Load(); m != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func RecordAuthRegister(ctx context.Context, userType, outcome string) {
	if m := metrics.Load(); m != nil {
		m.registrations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("user_type", userType),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordAuthLogout(ctx context.Context, outcome string) {
	if m := metrics.Load(); m != nil {
		m.logouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func RecordPasswordFlowEvent(ctx context.Context, flow, outcome string) {
	if m := metrics.Load(); m != nil {
		m.passwordFlows.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flow", flow),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordTokenValidation(ctx context.Context, tokenType, outcome string) {
	if m := metrics.Load(); m != nil {
		m.tokenValidations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("token_type", tokenType),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordTokenRevocation(ctx context.Context, reason, outcome string) {
	if m := metrics.Load(); m != nil {
		m.tokenRevocations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", reason),
			attribute.String("outcome", outcome),
		))
	}
}

// RecordAuthRequestDuration takes the chi route pattern, not the raw
// URL path, to keep token-bearing paths out of attribute values.
func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	if m := metrics.Load(); m != nil {
		m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		))
	}
}

func RecordHealthCheck(ctx context.Context, name string, healthy bool, duration time.Duration) {
	m := metrics.Load()
	if m == nil {
		return
	}
	outcome := "healthy"
	if !healthy {
		outcome = "unhealthy"
	}
	m.healthChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", name),
		attribute.String("outcome", outcome),
	))
	m.healthDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", name),
	))
}
