package exporter

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewJaeger builds a span exporter pushing to a Jaeger collector.
func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}
