package core

import (
	"context"

	"bridge/internal/configuration"
	"bridge/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// InitTracing wires the OTLP trace exporter when tracing is enabled and
// returns a shutdown function for main to defer.
func InitTracing(ctx context.Context, config models.TracingConfiguration) func(context.Context) error {
	if !config.Enabled {
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(config.Endpoint))
	if err != nil {
		zap.L().Fatal("Failed to initialize trace exporter", zap.Error(err))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(configuration.AppName),
		)),
	)
	otel.SetTracerProvider(provider)

	zap.L().Info("Tracing enabled", zap.String("endpoint", config.Endpoint))
	return provider.Shutdown
}
