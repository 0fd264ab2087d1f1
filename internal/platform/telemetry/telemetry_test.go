package telemetry_test

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	p, err := telemetry.Setup(context.Background(), config.TelemetryConfig{Exporter: telemetry.ExporterOTLP})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if p.Tracer != nil || p.Meter != nil || p.Metrics != nil {
		t.Errorf("Setup() = %+v, want empty providers when disabled", p)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSetup_InvalidExporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.TelemetryConfig
		wantErr string
	}{
		{
			name:    "unknown exporter",
			cfg:     config.TelemetryConfig{Enabled: true, Exporter: "zipkin"},
			wantErr: `unsupported exporter "zipkin"`,
		},
		{
			name:    "otlp without endpoint",
			cfg:     config.TelemetryConfig{Enabled: true, Exporter: telemetry.ExporterOTLP},
			wantErr: "requires an endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := telemetry.Setup(context.Background(), tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Setup() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// Setup replaces the global providers, so these cases run sequentially.
func TestSetup_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
	}{
		{name: "stdout", exporter: telemetry.ExporterStdout},
		{name: "otlp over http", exporter: telemetry.ExporterOTLP, endpoint: "http://localhost:4318"},
		{name: "otlp bare host", exporter: telemetry.ExporterOTLP, endpoint: "localhost:4318"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p, err := telemetry.Setup(ctx, config.TelemetryConfig{
				Enabled:     true,
				Exporter:    tt.exporter,
				Endpoint:    tt.endpoint,
				ServiceName: "layerflow-test",
			})
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			// No collector runs in unit tests, so an OTLP flush may fail.
			t.Cleanup(func() { _ = p.Shutdown(ctx) })

			if p.Tracer == nil || p.Meter == nil || p.Metrics == nil {
				t.Fatalf("Setup() = %+v, want tracer, meter and metrics", p)
			}
			if otel.GetTracerProvider() != p.Tracer {
				t.Error("global tracer provider was not replaced")
			}
			fields := otel.GetTextMapPropagator().Fields()
			if !contains(fields, "traceparent") || !contains(fields, "baggage") {
				t.Errorf("propagator fields = %v, want traceparent and baggage", fields)
			}
		})
	}
}

func TestProviders_ShutdownNil(t *testing.T) {
	t.Parallel()

	var p *telemetry.Providers
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on nil = %v, want nil", err)
	}
}

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m, err := telemetry.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	instruments := map[string]any{
		"ServerRequestDuration": m.ServerRequestDuration,
		"ServerRequestTotal":    m.ServerRequestTotal,
		"ClientRequestDuration": m.ClientRequestDuration,
		"ClientRequestTotal":    m.ClientRequestTotal,
		"LayerVisitDuration":    m.LayerVisitDuration,
		"LayerVisitTotal":       m.LayerVisitTotal,
		"DocumentTotal":         m.DocumentTotal,
		"RollbackTotal":         m.RollbackTotal,
	}
	for name, inst := range instruments {
		if inst == nil {
			t.Errorf("%s is nil", name)
		}
	}

	m.LayerVisitTotal.Add(context.Background(), 1)
}

func contains(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
