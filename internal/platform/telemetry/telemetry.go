// Package telemetry sets up OpenTelemetry tracing and metrics for the
// service and owns the metric instruments the pipeline records into.
//
//	p, err := telemetry.Setup(ctx, cfg.Telemetry)
//	defer p.Shutdown(ctx)
//	p.Metrics.LayerVisitTotal.Add(ctx, 1, ...)
//
// When telemetry is disabled Setup returns Providers with nil Metrics, and
// every recorder in the codebase treats nil Metrics as "do not record".
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

// Supported exporters.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const instrumentationScope = "github.com/jsamuelsen11/layerflow"

// Attribute keys for metric labels.
var (
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPStatus  = attribute.Key("http.status_code")
	AttrHTTPRoute   = attribute.Key("http.route")
	AttrPeerService = attribute.Key("peer.service")
	AttrResult      = attribute.Key("result")
	AttrLayerTag    = attribute.Key("layer.tag")
	AttrLayerKind   = attribute.Key("layer.kind")
	AttrBackend     = attribute.Key("layer.backend")
)

// Metrics holds the instruments recorded by the HTTP layer, the relay
// client and the layer processor.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter

	LayerVisitDuration metric.Float64Histogram
	LayerVisitTotal    metric.Int64Counter
	DocumentTotal      metric.Int64Counter
	RollbackTotal      metric.Int64Counter
}

// Providers owns the SDK providers installed by Setup. The zero value is a
// disabled setup whose Shutdown is a no-op.
type Providers struct {
	Tracer  *sdktrace.TracerProvider
	Meter   *sdkmetric.MeterProvider
	Metrics *Metrics
}

// Setup installs global tracer and meter providers for cfg and registers
// the W3C trace-context and baggage propagators. It returns empty Providers
// when cfg.Enabled is false.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (*Providers, error) {
	if !cfg.Enabled {
		return &Providers{}, nil
	}

	ep, err := parseEndpoint(cfg.Exporter, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	p := &Providers{}

	spans, err := ep.spanExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating span exporter: %w", err)
	}
	p.Tracer = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans),
		sdktrace.WithResource(res),
	)

	readings, err := ep.metricExporter(ctx)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: creating metric exporter: %w", err)
	}
	p.Meter = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(readings)),
		sdkmetric.WithResource(res),
	)

	if p.Metrics, err = NewMetrics(p.Meter); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(p.Tracer)
	otel.SetMeterProvider(p.Meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

// Shutdown flushes and stops both providers. Safe on a nil receiver.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.Tracer != nil {
		if err := p.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentationScope)

	var (
		m    Metrics
		errs []error
	)

	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		if err != nil {
			errs = append(errs, fmt.Errorf("creating %s: %w", name, err))
		}
		return h
	}
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			errs = append(errs, fmt.Errorf("creating %s: %w", name, err))
		}
		return c
	}

	m.ServerRequestDuration = histogram("http.server.request.duration", "Duration of ingestion API requests")
	m.ServerRequestTotal = counter("http.server.request.total", "Ingestion API requests by route and status", "{request}")
	m.ClientRequestDuration = histogram("http.client.request.duration", "Duration of mail relay requests")
	m.ClientRequestTotal = counter("http.client.request.total", "Mail relay requests by result", "{request}")

	m.LayerVisitDuration = histogram("layer.visit.duration", "Duration of one layer's own processing")
	m.LayerVisitTotal = counter("layer.visit.total", "Layer visits by tag and outcome kind", "{layer}")
	m.DocumentTotal = counter("document.processed.total", "Documents processed by result", "{document}")
	m.RollbackTotal = counter("ledger.rollback.total", "Undo ledger entries rolled back", "{entry}")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// endpoint is a validated exporter target. host is empty for stdout.
type endpoint struct {
	exporter string
	host     string
	insecure bool
}

func parseEndpoint(exporter, raw string) (endpoint, error) {
	switch exporter {
	case ExporterStdout:
		return endpoint{exporter: exporter}, nil
	case ExporterOTLP:
	default:
		return endpoint{}, fmt.Errorf("telemetry: unsupported exporter %q", exporter)
	}

	if raw == "" {
		return endpoint{}, errors.New("telemetry: otlp exporter requires an endpoint")
	}
	// A bare host:port is accepted as a plain-text collector address.
	ep := endpoint{exporter: exporter, host: raw, insecure: true}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		ep.host = u.Host
		ep.insecure = u.Scheme != "https"
	}
	return ep, nil
}

func (e endpoint) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if e.exporter == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(e.host)}
	if e.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func (e endpoint) metricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if e.exporter == ExporterStdout {
		return stdoutmetric.New()
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(e.host)}
	if e.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}
