// Package otelhelper provides distributed tracing for transition monitoring.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// Common attribute keys.
	WorkflowIDKey   = "stateforge.workflow.id"
	WorkflowNameKey = "stateforge.workflow.name"
	ArtifactIDKey   = "stateforge.artifact.id"
	TransitionKey   = "stateforge.transition.name"
	TriggerNameKey  = "stateforge.trigger.name"
	EventIDKey      = "stateforge.event.id"
	ServiceIDKey    = "stateforge.service.id"
)

// InitTracer registers the OTLP trace pipeline as the global tracer
// provider. Callers own the returned provider and must Shutdown it on
// exit to flush batched spans.
func InitTracer(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return tp, nil
}
