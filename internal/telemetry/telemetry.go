// Package telemetry initializes OpenTelemetry tracing and metrics for the
// resolver pipeline and exposes them for scraping.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// debugInterval controls how often the optional stdout metric reader (see
// Init's Debug parameter) dumps a snapshot of every instrument, for
// inspecting pipeline throughput during local development without standing
// up a Prometheus scrape target.
const debugInterval = 30 * time.Second

// Shutdown flushes and tears down the tracer and meter providers.
type Shutdown func(ctx context.Context) error

// Provider bundles the meter used to record pipeline metrics and an HTTP
// handler exposing them in Prometheus exposition format.
type Provider struct {
	Meter          metric.Meter
	MetricsHandler http.Handler

	PipelineRuns    metric.Int64Counter
	PipelineErrors  metric.Int64Counter
	PipelineLatency metric.Float64Histogram
}

// Init configures the global tracer provider (stdout exporter, suitable for
// local runs and tests) and a Prometheus-backed meter provider, and
// registers the pipeline instruments this package exposes. When debug is
// true, a second meter reader also periodically dumps every instrument to
// stdout, for local development without a Prometheus scrape target.
func Init(ctx context.Context, serviceName string, debug bool) (*Provider, Shutdown, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricExp, err := otelprometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create prometheus exporter: %w", err)
	}
	readers := []sdkmetric.Option{sdkmetric.WithReader(metricExp), sdkmetric.WithResource(res)}
	if debug {
		debugExp, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("telemetry: create stdout metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(debugExp, sdkmetric.WithInterval(debugInterval))))
	}
	mp := sdkmetric.NewMeterProvider(readers...)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("github.com/phosphorco/legalnlp/internal/legal/pipeline")

	runs, err := meter.Int64Counter("legalnlp.pipeline.runs",
		metric.WithDescription("number of resolver pipeline runs"))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create runs counter: %w", err)
	}
	errs, err := meter.Int64Counter("legalnlp.pipeline.errors",
		metric.WithDescription("number of resolver pipeline runs that returned an error"))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create errors counter: %w", err)
	}
	latency, err := meter.Float64Histogram("legalnlp.pipeline.duration",
		metric.WithDescription("resolver pipeline run duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: create latency histogram: %w", err)
	}

	provider := &Provider{
		Meter:           meter,
		MetricsHandler:  promhttp.Handler(),
		PipelineRuns:    runs,
		PipelineErrors:  errs,
		PipelineLatency: latency,
	}

	shutdown := func(ctx context.Context) error {
		var firstErr error
		if err := tp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	return provider, shutdown, nil
}

// RecordRun records one pipeline run's outcome and wall-clock duration.
func (p *Provider) RecordRun(ctx context.Context, duration time.Duration, err error) {
	p.PipelineRuns.Add(ctx, 1)
	p.PipelineLatency.Record(ctx, duration.Seconds())
	if err != nil {
		p.PipelineErrors.Add(ctx, 1)
	}
}
