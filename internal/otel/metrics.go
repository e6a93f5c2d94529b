package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "panectl"

// Call outcomes recorded on calls.total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the OTEL metric instruments for façade calls.
// All instruments are safe for concurrent use, and every method is nil-safe.
type Metrics struct {
	// Calls counts façade calls partitioned by op and outcome (ok, error).
	Calls metric.Int64Counter

	// Duration records wall time per call in milliseconds, by op.
	Duration metric.Float64Histogram

	// Failures counts failed calls partitioned by op and error kind.
	Failures metric.Int64Counter

	// InventoryRefreshes counts inventory passes; sessions is the last size.
	InventoryRefreshes metric.Int64Counter
	InventorySessions  metric.Int64Gauge
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Calls, err = meter.Int64Counter("calls.total",
		metric.WithDescription("Total façade calls partitioned by op and outcome"))
	if err != nil {
		return nil, err
	}

	m.Duration, err = meter.Float64Histogram("calls.duration",
		metric.WithDescription("Wall time of façade calls including the external tool"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	m.Failures, err = meter.Int64Counter("calls.failures",
		metric.WithDescription("Failed façade calls partitioned by op and error kind"))
	if err != nil {
		return nil, err
	}

	m.InventoryRefreshes, err = meter.Int64Counter("inventory.refreshes",
		metric.WithDescription("Number of completed inventory refresh passes"))
	if err != nil {
		return nil, err
	}

	m.InventorySessions, err = meter.Int64Gauge("inventory.sessions",
		metric.WithDescription("Number of sessions in the latest inventory snapshot"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCall records one completed façade call. kind is empty on success.
func (m *Metrics) RecordCall(ctx context.Context, op string, elapsed time.Duration, kind string) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if kind != "" {
		outcome = OutcomeError
	}
	m.Calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	m.Duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(
		attribute.String("op", op),
	))
	if kind != "" {
		m.Failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("error.kind", kind),
		))
	}
}

// RecordInventory records a finished inventory refresh.
func (m *Metrics) RecordInventory(ctx context.Context, sessions int) {
	if m == nil {
		return
	}
	m.InventoryRefreshes.Add(ctx, 1)
	m.InventorySessions.Record(ctx, int64(sessions))
}
