// Package telemetry provides OpenTelemetry integration for tracing
// engine runs, plan generation and benchmark sweeps.
//
// Configuration comes from standard environment variables:
//
//	OTEL_ENABLED                 - enable/disable tracing (default: false)
//	OTEL_SERVICE_NAME            - service name (default: stencil-engine)
//	OTEL_EXPORTER_OTLP_ENDPOINT  - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL  - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_INSECURE  - use an insecure connection
//	OTEL_TRACES_SAMPLER          - always_on, always_off, traceidratio
//	OTEL_TRACES_SAMPLER_ARG      - sampler argument
//
// Spans wrap the engine's entry points from the CLI; nothing inside the
// scheduler's hot loop ever touches a tracer.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc is a function that shuts down the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

// Init initializes OpenTelemetry and sets the global TracerProvider.
// When OTEL_ENABLED is not "true" it returns a no-op shutdown and the
// default no-op provider stays in place.
func Init(ctx context.Context) (ShutdownFunc, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// Enabled reports whether tracing was switched on by the environment.
func Enabled() bool {
	return loadConfig().Enabled
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = configFromEnv()
	})
	return globalConfig
}
