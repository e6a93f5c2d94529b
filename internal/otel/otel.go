// Package otel wires OpenTelemetry for panectl.
//
// Every façade call becomes a span and feeds the call metrics. Traces and
// metrics are exported over OTLP HTTP when an endpoint is configured (config
// file, PANECTL_OTEL_ENDPOINT, or OTEL_EXPORTER_OTLP_ENDPOINT); otherwise the
// tracer and instruments are no-ops.
package otel

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName            = "panectl"
	defaultMetricsInterval = 15 * time.Second
)

// Version is reported as service.version. cmd sets it from its own Version.
var Version = "dev"

// OTELConfig configures the exporters.
type OTELConfig struct {
	Endpoint string // OTLP base URL, e.g. "http://localhost:4318"
	Headers  string // "key=value,key2=value2", the OTEL_EXPORTER_OTLP_HEADERS format

	// MetricsInterval is the export period; zero means 15s. CLI invocations
	// are short, so most points are flushed by Shutdown rather than the timer.
	MetricsInterval time.Duration
}

// Telemetry holds the providers and the instruments façade calls use.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	Tracer  trace.Tracer
	Metrics *Metrics
}

// endpoint is an OTLP base URL split the way the HTTP exporters want it.
type endpoint struct {
	host     string // host:port
	basePath string // without trailing slash; signal paths are appended
	insecure bool
}

func parseEndpoint(raw string) (endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, fmt.Errorf("otel: invalid endpoint URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return endpoint{}, fmt.Errorf("otel: endpoint %q has no host", raw)
	}
	return endpoint{
		host:     u.Host,
		basePath: strings.TrimRight(u.Path, "/"),
		insecure: u.Scheme == "http",
	}, nil
}

// parseHeaders parses "key=value,key2=value2". Entries without a key are
// dropped.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers
}

func newTracerProvider(ctx context.Context, ep endpoint, headers map[string]string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(ep.host),
		otlptracehttp.WithURLPath(ep.basePath + "/v1/traces"),
	}
	if ep.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, ep endpoint, headers map[string]string, res *resource.Resource, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(ep.host),
		otlpmetrichttp.WithURLPath(ep.basePath + "/v1/metrics"),
	}
	if ep.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(headers))
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}

// Init installs OTLP HTTP providers when cfg.Endpoint is set. Without an
// endpoint it returns a Telemetry whose tracer and instruments record
// nothing.
func Init(ctx context.Context, cfg OTELConfig) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Endpoint != "" {
		ep, err := parseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(Version),
			),
			resource.WithHost(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel resource: %w", err)
		}
		interval := cfg.MetricsInterval
		if interval <= 0 {
			interval = defaultMetricsInterval
		}
		headers := parseHeaders(cfg.Headers)

		if t.tp, err = newTracerProvider(ctx, ep, headers, res); err != nil {
			return nil, err
		}
		if t.mp, err = newMeterProvider(ctx, ep, headers, res, interval); err != nil {
			_ = t.tp.Shutdown(ctx)
			return nil, err
		}
		otel.SetTracerProvider(t.tp)
		otel.SetMeterProvider(t.mp)
	}

	t.Tracer = otel.Tracer(serviceName)
	metrics, err := NewMetrics()
	if err != nil {
		t.Shutdown(ctx)
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = metrics
	return t, nil
}

// Enabled reports whether spans and metrics are exported anywhere.
func (t *Telemetry) Enabled() bool {
	return t != nil && t.tp != nil
}

// Shutdown flushes pending spans and metric points. Export errors are
// dropped: the command has already produced its result.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t == nil {
		return
	}
	if t.tp != nil {
		_ = t.tp.Shutdown(ctx)
	}
	if t.mp != nil {
		_ = t.mp.Shutdown(ctx)
	}
}
