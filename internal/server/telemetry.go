package server

import (
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	ttrace "github.com/mkatbalasd/PDFCompress/internal/telemetry/trace"
	traceExporter "github.com/mkatbalasd/PDFCompress/internal/telemetry/trace/exporter"
)

func (s *Server) InitGlobalProvider(name, endpoint string) {
	spanExporter, err := traceExporter.NewJaeger(endpoint)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer exporter")
	}

	tracerProvider, tracerProviderCloseFn, err := ttrace.NewTraceProviderBuilder(name).
		SetExporter(spanExporter).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer provider")
	}
	s.traceProviderCloseFn = append(s.traceProviderCloseFn, tracerProviderCloseFn)

	// set global propagator to tracecontext (the default is no-op).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tracerProvider)
}
