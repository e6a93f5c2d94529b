package otel

import (
	"context"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: map[string]string{}},
		{name: "single", raw: "Authorization=Bearer abc", want: map[string]string{"Authorization": "Bearer abc"}},
		{
			name: "multiple with spaces",
			raw:  " a=1 , b = 2 ",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{name: "value with equals", raw: "x=a=b", want: map[string]string{"x": "a=b"}},
		{name: "missing key skipped", raw: "=v,k=v", want: map[string]string{"k": "v"}},
		{name: "no separator skipped", raw: "junk", want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHeaders(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("parseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestInit_NoEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, OTELConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer tel.Shutdown(ctx)

	if tel.Enabled() {
		t.Error("telemetry without endpoint should not be enabled")
	}
	if tel.Tracer == nil || tel.Metrics == nil {
		t.Fatal("tracer and metrics should be usable without an endpoint")
	}
	tel.Metrics.RecordCall(ctx, "list-sessions", 3*time.Millisecond, "")
	tel.Metrics.RecordCall(ctx, "kill-session", time.Millisecond, "not_found")
	tel.Metrics.RecordInventory(ctx, 2)
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		want    endpoint
		wantErr bool
	}{
		{raw: "http://localhost:4318", want: endpoint{host: "localhost:4318", insecure: true}},
		{raw: "https://otel.example.com/base/", want: endpoint{host: "otel.example.com", basePath: "/base"}},
		{raw: "localhost:4318", wantErr: true},
		{raw: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseEndpoint(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEndpoint(%q) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEndpoint(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseEndpoint(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInit_InvalidEndpoint(t *testing.T) {
	if _, err := Init(context.Background(), OTELConfig{Endpoint: "://bad"}); err == nil {
		t.Error("expected error for invalid endpoint URL")
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCall(context.Background(), "x", time.Second, "timeout")
	m.RecordInventory(context.Background(), 1)

	var tel *Telemetry
	tel.Shutdown(context.Background())
}
