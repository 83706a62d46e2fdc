package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

type TracingConfig struct {
	Enabled     bool              `yaml:"enabled"`
	ServiceName string            `yaml:"service_name"`
	Environment string            `yaml:"environment"`
	Version     string            `yaml:"version"`
	Endpoint    string            `yaml:"endpoint"`
	Headers     map[string]string `yaml:"headers"`
	Insecure    bool              `yaml:"insecure"`
	SampleRatio float64           `yaml:"sample_ratio"`
	// Stdout exports spans to stdout when no endpoint is set. Off by default.
	Stdout bool `yaml:"stdout"`
}

// InitTracing installs the global tracer provider and propagators. The returned
// shutdown flushes pending spans; it is a no-op when tracing is disabled.
func InitTracing(ctx context.Context, log *logger.Logger, cfg TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "hookbrief"
	}
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		),
	)
	if err != nil && log != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	}
	exporter, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return noop, err
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if log != nil {
		log.Info("otel tracing initialized", "service", serviceName, "endpoint", cfg.Endpoint)
	}
	return tp.Shutdown, nil
}

func sampleRatio(v float64) float64 {
	switch {
	case v <= 0:
		return 0.1
	case v > 1:
		return 1
	default:
		return v
	}
}

func buildTraceExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		return otlptracehttp.New(ctx, opts...)
	}
	if cfg.Stdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return nil, nil
}
