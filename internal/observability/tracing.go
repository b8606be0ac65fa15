package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Tracer is the global tracer used for the application.
var Tracer trace.Tracer = otel.Tracer("inkwell")

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// DBDriver is recorded on the resource so traces from sqlite and postgres deployments can be told apart.
	DBDriver     string
	Enabled      bool
	Exporter     string // "stdout" or "otlp"
	OTLPEndpoint string
	SamplerRatio float64
}

const defaultServiceName = "inkwell"

// InitTracing installs the global tracer provider and returns its shutdown
// function. When tracing is disabled spans go to the no-op provider.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(_ context.Context) error { return nil }, nil
	}

	exporter, err := newSpanExporter(cfg)
	if err != nil {
		return nil, err
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplerRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	Tracer = tp.Tracer(cfg.ServiceName)
	Logger.Info("Tracing enabled",
		zap.String("exporter", cfg.Exporter),
		zap.Float64("sampler_ratio", cfg.SamplerRatio))

	return tp.Shutdown, nil
}

func newSpanExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		exp, err := otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter for %s: %w", cfg.OTLPEndpoint, err)
		}
		return exp, nil
	case "stdout", "":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unsupported TRACING_EXPORTER %q", cfg.Exporter)
	}
}

// newResource describes this process: service identity, deployment
// environment and the store backing it.
func newResource(cfg TracingConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.DBDriver != "" {
		attrs = append(attrs, attribute.String("inkwell.db.driver", cfg.DBDriver))
	}
	return resource.New(context.Background(),
		resource.WithAttributes(attrs...),
		resource.WithProcessRuntimeVersion(),
	)
}

// samplerFor keeps every trace at ratio >= 1 and none at ratio <= 0.
// In between, root spans are sampled by trace id and children follow their parent.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// StartServiceSpan starts an internal span named "<service>.<method>".
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer.Start(ctx, service+"."+method, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("service.name", service),
		attribute.String("service.method", method),
	)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
