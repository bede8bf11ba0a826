package trace

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// CloseFunc flushes and shuts down a provider.
type CloseFunc func(ctx context.Context) error

// ProviderBuilder -.
type ProviderBuilder struct {
	name     string
	exporter sdktrace.SpanExporter
}

// NewTraceProviderBuilder -.
func NewTraceProviderBuilder(name string) *ProviderBuilder {
	return &ProviderBuilder{name: name}
}

// SetExporter -.
func (b *ProviderBuilder) SetExporter(exporter sdktrace.SpanExporter) *ProviderBuilder {
	b.exporter = exporter
	return b
}

// Build -.
func (b *ProviderBuilder) Build() (*sdktrace.TracerProvider, CloseFunc, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(b.name),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(b.exporter),
		sdktrace.WithResource(res),
	)

	return provider, provider.Shutdown, nil
}
